package ignore

// IgnoreFileName is the project-level ignore file read next to .gitignore.
const IgnoreFileName = ".modresolveignore"

// GeneratedDirNames are host output directories. They are excluded when
// they sit directly under the project directory or under a component's
// base directory, never elsewhere.
var GeneratedDirNames = []string{
	"Saved",
	"Intermediate",
	"DerivedDataCache",
}

// SkippedDirNames are never descended into, wherever they appear.
// The vendor folder is deliberately absent: vendored modules resolve.
var SkippedDirNames = []string{
	".git",
	".svn",
	".hg",
	".idea",
	".vscode",
	".vs",
	".cache",
}

// WatchedExtensions are the file types whose changes matter to scripts:
// compiled output, sources that compile to it, and JSON data or manifests.
var WatchedExtensions = []string{
	".js",
	".mjs",
	".cjs",
	".json",
	".ts",
	".mts",
	".tsx",
}
