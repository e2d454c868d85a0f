package main

import "github.com/netconfd/panos-driver/client/cmd"

func main() {
	cmd.Execute()
}
