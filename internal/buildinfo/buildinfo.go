/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package buildinfo reports the version of the taskgate binary and of the libraries it's built with.
package buildinfo

import (
	"debug/buildinfo"
	"regexp"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Set via -ldflags "-X github.com/acronis/taskgate/internal/buildinfo.version=... -X ...commit=...".
var (
	version string
	commit  string
)

const unknownVersion = "v0.0.0-dev"

// StackModules are the libraries which versions are shown by the extended version output.
var StackModules = []string{
	"github.com/go-chi/chi",
	"github.com/prometheus/client_golang",
	"github.com/spf13/viper",
	"github.com/ssgreg/logf",
	"github.com/throttled/throttled",
	"github.com/RussellLuo/slidingwindow",
	"golang.org/x/time",
}

// Info describes the build.
type Info struct {
	Version   string
	Commit    string
	GoVersion string
}

var (
	info     Info
	infoOnce sync.Once
)

// Get returns information about the build.
func Get() Info {
	infoOnce.Do(func() {
		info = Info{Version: version, Commit: commit, GoVersion: runtime.Version()}
		if buildInfo, ok := debug.ReadBuildInfo(); ok && info.Version == "" {
			if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
				info.Version = buildInfo.Main.Version
			}
		}
		if info.Version == "" {
			info.Version = unknownVersion
		}
		if info.Commit == "" {
			info.Commit = "unknown"
		}
	})
	return info
}

// ModuleVersions returns versions of the given modules the binary is built with.
// Modules that are not found are omitted.
func ModuleVersions(modNames []string) map[string]string {
	buildInfo, _ := debug.ReadBuildInfo()
	return extractModuleVersions(buildInfo, modNames)
}

func extractModuleVersions(buildInfo *buildinfo.BuildInfo, modNames []string) map[string]string {
	versions := make(map[string]string, len(modNames))
	for _, modName := range modNames {
		if v := extractModuleVersion(buildInfo, modName); v != "" {
			versions[modName] = v
		}
	}
	return versions
}

// extractModuleVersion extracts the version of the given module from the build info.
// It expects the module name to be in the form "moduleName" or "moduleName/vX" where X is a major version number.
func extractModuleVersion(buildInfo *buildinfo.BuildInfo, modName string) string {
	if buildInfo == nil {
		return ""
	}
	re, err := regexp.Compile(`^` + regexp.QuoteMeta(modName) + `(/v[0-9]+)?$`)
	if err != nil {
		return "" // should never happen
	}
	for _, dep := range buildInfo.Deps {
		if re.MatchString(dep.Path) {
			return dep.Version
		}
	}
	return ""
}

// NewPrometheusCollector returns a constant "build_info" gauge labeled with the version of the build.
func NewPrometheusCollector(namespace string) prometheus.Collector {
	bi := Get()
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "A metric with a constant '1' value labeled by version, commit and Go version of the build.",
		ConstLabels: prometheus.Labels{
			"version":    bi.Version,
			"commit":     bi.Commit,
			"go_version": bi.GoVersion,
		},
	}, func() float64 { return 1 })
}
