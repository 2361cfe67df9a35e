package main

import (
	"github.com/ValentinKolb/tcpc/cmd"
)

func main() {
	cmd.Execute()
}
