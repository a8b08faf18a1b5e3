package main

import "challan-reconciler/cmd"

func main() {
	cmd.Execute()
}
