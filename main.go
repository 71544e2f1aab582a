package main

import "github.com/quocbao/facegate/cmd"

func main() {
	cmd.Execute()
}
