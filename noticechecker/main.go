package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	checker := NewChecker()
	status := 0
	rootCmd := &cobra.Command{
		Use:   "noticechecker [pathspec ...]",
		Short: "Check copyright notices in revision-controlled files",
		Long: `noticechecker scans the files under revision control, by running git
ls-files, and reads each one to discover its copyright notice. The last
modified date comes from git log, or from the file system for files with
uncommitted changes.

Each file ends in one of these states.

-   EXEMPT, for names and formats configured out of checking.
-   MISSING, if the file has no copyright notice.
-   INCORRECT_DATE, if the notice year doesn't match the modified date.
-   CORRECT, otherwise.
-   ERROR, if the file couldn't be checked.

With confirmation, a corrected date is edited in to each INCORRECT_DATE
file, and a generated notice is inserted into each MISSING file with a
known comment style. A summary of states by file format is printed.

Positional arguments pass through to git ls-files. For example,
'*.storyboard' scans only .storyboard files anywhere in the hierarchy.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker.LsParameters = args
			var err error
			status, err = checker.Run()
			return err
		},
	}
	rootCmd.Flags().StringVarP(&checker.Edit, "edit", "e", checker.Edit,
		"yes or y to edit without confirmation; no or n to edit nothing;"+
			" prompt to ask file by file")
	rootCmd.Flags().BoolVarP(&checker.SummariseFirst,
		"summarise-first", "s", false,
		"Finish the scan and print the summary before offering any edits")
	rootCmd.Flags().StringVar(&checker.NoticeTemplate, "notice-template", "",
		"Notice template file, with %Y where the year goes."+
			" Default is a built-in template")
	rootCmd.Flags().IntVar(&checker.StopAfter, "stop-after", 0,
		"Stop after checking this many files; zero checks everything")
	rootCmd.Flags().StringSliceVar(&checker.ExemptNames,
		"exempt-names", checker.ExemptNames,
		"File names exempt from checking")
	rootCmd.Flags().StringSliceVar(&checker.ExemptSuffixes,
		"exempt-suffixes", checker.ExemptSuffixes,
		"File suffixes exempt from checking")
	rootCmd.Flags().StringSliceVar(&checker.MissingExemptSuffixes,
		"missing-exempt-suffixes", checker.MissingExemptSuffixes,
		"File suffixes that never get a notice inserted, only corrected")
	rootCmd.Flags().StringVar(&checker.IgnoreFile, "ignore-file", "",
		"File of ignore patterns; matching paths are exempt")
	rootCmd.Flags().BoolVarP(&checker.Verbose, "verbose", "v", false,
		"Print every path and state during the scan, instead of dots")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
	os.Exit(status)
}
