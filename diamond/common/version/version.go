package version

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"sync"
	"text/template"
)

const unknownVersion = "<unknown>"

// Version is stamped by the release build with -ldflags "-X ...version.Version=v1.2.3".
var Version = ""

type versionInfo struct {
	Version   string
	GitCommit string
	Modified  bool
}

var getVersionInfo = sync.OnceValue(func() versionInfo {
	info := versionInfo{Version: Version, GitCommit: unknownVersion}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "" && build.Main.Version != "" && build.Main.Version != "(devel)" {
		info.Version = build.Main.Version
	}
	for _, s := range build.Settings {
		switch s.Key {
		case "vcs.revision":
			info.GitCommit = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
})

func GetVersionInfo() versionInfo {
	return getVersionInfo()
}

func BuildVersionString(appTitle string) string {
	info := GetVersionInfo()
	ver := info.Version
	if ver == "" {
		ver = unknownVersion
	}
	commit := info.GitCommit
	if info.Modified {
		commit += "-dirty"
	}

	var buf bytes.Buffer
	if err := versionTmpl.Execute(&buf, map[string]any{
		"Title":   appTitle,
		"Version": ver,
		"OS":      runtime.GOOS,
		"Arch":    runtime.GOARCH,
		"Commit":  commit,
	}); err != nil {
		panic(err)
	}
	return buf.String()
}

var versionTmpl = template.Must(template.New("version").Parse(`{{ .Title }}
 Version:	{{ .Version }}
 OS/Arch:	{{ .OS }}/{{ .Arch }}
 Git commit:	{{ .Commit }}`))
