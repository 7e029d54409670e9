package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shortreel/internal/language"
)

func newLangsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "langs",
		Short:       "List supported narration languages",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := language.Supported()
			rows := make([][]string, 0, len(defs))
			for _, def := range defs {
				rows = append(rows, []string{def.Code, def.DisplayName, def.DefaultVoiceID})
			}
			table := renderTable([]string{"Code", "Language", "Default Voice"}, rows)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
