package main

import "jobmonitor/cmd"

func main() {
	cmd.Run()
}
