package main

import "github.com/arloliu/kmsg/cmd/kmsgdump/cmd"

func main() {
	cmd.Execute()
}
