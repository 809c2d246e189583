package main

import "github.com/ValentinKolb/infostress/cmd"

func main() {
	cmd.Execute()
}
