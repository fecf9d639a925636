package main

import "github.com/zeu5/qgrid/cmd"

func main() {
	cmd.Execute()
}
