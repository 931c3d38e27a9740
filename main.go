package main

import (
	"os"

	"github.com/yahsan2/sheet2jira/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
