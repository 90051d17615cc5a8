package main

import "github.com/zkceremony/powersoftau/cmd"

func main() {
	cmd.Execute()
}
