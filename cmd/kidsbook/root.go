package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kidsbook",
		Short: "Children's book generator",
		Long: "kidsbook writes illustrated children's stories and turns existing manuscripts\n" +
			"(txt, md, html, pdf, docx) into chapter-sized pieces.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newSplitCmd(), newServeCmd())
	return root
}
