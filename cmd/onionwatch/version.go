package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Populated through -ldflags at release build time. Development builds
// leave these empty and fall back to the module's embedded build info.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildVersion resolves the version string, preferring ldflags.
func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// vcsSetting looks up one key in the binary's embedded VCS metadata.
func vcsSetting(key string) (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}

// buildCommit resolves the commit hash, shortened to seven characters
// when it comes from VCS metadata.
func buildCommit() string {
	if commit != "" {
		return commit
	}
	if rev, ok := vcsSetting("vcs.revision"); ok {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		return rev
	}
	return "unknown"
}

// buildDate resolves the build timestamp.
func buildDate() string {
	if date != "" {
		return date
	}
	if t, ok := vcsSetting("vcs.time"); ok {
		return t
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of onionwatch.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "onionwatch version %s\n", buildVersion())
			fmt.Fprintf(out, "  commit: %s\n", buildCommit())
			fmt.Fprintf(out, "  built:  %s\n", buildDate())
		},
	}
}
