package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "billbot"}

	root.AddCommand(serveCMD(), syncCMD(), askCMD(), migrateCMD())
	_ = root.Execute()
}
