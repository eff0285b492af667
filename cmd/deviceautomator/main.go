package main

import "github.com/devicelab-dev/deviceautomator/pkg/cli"

func main() {
	cli.Execute()
}
