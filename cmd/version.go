package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X github.com/abhisek/skillmap/cmd.version=...".
var version = "(devel)"

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// currentBuild falls back to the module version and VCS stamp recorded
// by the Go toolchain when no version was linked in.
func currentBuild() buildInfo {
	b := buildInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	return b.withBuildInfo(info)
}

func (b buildInfo) withBuildInfo(info *debug.BuildInfo) buildInfo {
	if b.Version == "(devel)" && info.Main.Version != "" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
			if len(b.Commit) > 12 {
				b.Commit = b.Commit[:12]
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

func (b buildInfo) String() string {
	s := "skillmap " + b.Version
	if b.Commit != "" {
		s += " (" + b.Commit
		if b.Modified {
			s += ", dirty"
		}
		s += ")"
	}
	return fmt.Sprintf("%s %s %s", s, b.GoVersion, b.Platform)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build details",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := currentBuild()
		if wantJSON(cmd) {
			return printJSON(b)
		}
		fmt.Println(b)
		return nil
	},
}
