package main

import "obdpoll/cmd"

func main() {
	cmd.Execute()
}
