package main

import (
	"github.com/ateneai/wa-relay/cmd"
)

func main() {
	cmd.Execute()
}
