// Package walker enumerates candidate files beneath a directory while honouring
// .gitignore, .ignore and .git/info/exclude rules.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/flatten/internal/config"
	"github.com/temirov/flatten/internal/utils"
)

const (
	directoryMatchSuffix = "/"

	warningAccessPathFormat  = "Warning: error accessing path %s: %v"
	warningIgnoreFileFormat  = "Warning: skipping ignore rules in %s: %v"
	debugIgnoredPathFormat   = "ignored %s (%s)"
	errorAbsoluteRootFormat  = "resolving absolute path for %s: %w"
	errorStatRootFormat      = "stat failed for '%s': %w"
	errorRootNotDirectory    = "'%s' is not a directory"
	errorWalkDirectoryFormat = "walking %s: %w"
)

// Walker enumerates the regular files beneath root.
type Walker interface {
	Walk(root string) ([]string, error)
}

// Options configures which ignore files an IgnoreWalker honours.
type Options struct {
	UseGitignore  bool
	UseIgnoreFile bool
	IncludeGit    bool
	Logger        *zap.Logger
}

// DefaultOptions enables every ignore-file kind and skips the .git directory.
func DefaultOptions() Options {
	return Options{UseGitignore: true, UseIgnoreFile: true}
}

// IgnoreWalker walks the filesystem and drops entries matched by ignore files found in
// the walked directories and in their ancestors up to the enclosing git work tree.
// .ignore outranks .gitignore, which outranks .git/info/exclude.
// Hidden files are visited.
type IgnoreWalker struct {
	options Options
	logger  *zap.Logger
}

// NewIgnoreWalker constructs an IgnoreWalker.
func NewIgnoreWalker(options Options) *IgnoreWalker {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IgnoreWalker{options: options, logger: logger}
}

// ignoreKind ranks ignore files. A verdict from a lower kind anywhere in the ancestry wins
// over any verdict from a higher kind.
type ignoreKind int

const (
	ignoreKindIgnoreFile ignoreKind = iota
	ignoreKindGitignore
	ignoreKindGitExclude
	ignoreKindCount
)

// directoryRules holds the compiled ignore files of one directory, indexed by kind.
type directoryRules [ignoreKindCount]*config.IgnoreRules

// ignoreScopes maps an absolute directory to the rules whose patterns are relative to it.
type ignoreScopes map[string]*directoryRules

// Walk returns the regular files under root in walk order. Returned paths are joined onto
// root as given, so a root of "." yields paths such as "src/main.rs". Entries that cannot
// be read are reported and skipped; only a failure on root itself is returned.
func (walker *IgnoreWalker) Walk(root string) ([]string, error) {
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return nil, fmt.Errorf(errorAbsoluteRootFormat, root, absoluteError)
	}
	if linkInfo, linkError := os.Lstat(absoluteRoot); linkError == nil && linkInfo.Mode()&fs.ModeSymlink != 0 {
		if resolvedRoot, resolveError := filepath.EvalSymlinks(absoluteRoot); resolveError == nil {
			absoluteRoot = resolvedRoot
		}
	}
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, root, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectory, root)
	}

	scopes := ignoreScopes{}
	walker.loadAncestorScopes(absoluteRoot, scopes)

	var files []string
	walkFunction := func(currentPath string, directoryEntry fs.DirEntry, accessError error) error {
		if accessError != nil {
			if currentPath == absoluteRoot {
				return accessError
			}
			walker.logger.Warn(fmt.Sprintf(warningAccessPathFormat, currentPath, accessError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if directoryEntry.IsDir() {
			if currentPath != absoluteRoot {
				if !walker.options.IncludeGit && directoryEntry.Name() == utils.GitDirectoryName {
					return filepath.SkipDir
				}
				if walker.isIgnored(currentPath, true, scopes) {
					return filepath.SkipDir
				}
			}
			walker.loadDirectoryScope(currentPath, scopes)
			return nil
		}

		if walker.isIgnored(currentPath, false, scopes) {
			return nil
		}
		if !isRegularFile(currentPath, directoryEntry) {
			return nil
		}
		files = append(files, displayPath(root, absoluteRoot, currentPath))
		return nil
	}

	if walkError := filepath.WalkDir(absoluteRoot, walkFunction); walkError != nil {
		return nil, fmt.Errorf(errorWalkDirectoryFormat, root, walkError)
	}
	return files, nil
}

// loadAncestorScopes loads ignore files from the parents of absoluteRoot when absoluteRoot
// lies inside a git work tree, stopping at the work tree root.
func (walker *IgnoreWalker) loadAncestorScopes(absoluteRoot string, scopes ignoreScopes) {
	workTreeRoot, insideWorkTree := utils.FindGitWorkTree(absoluteRoot)
	if !insideWorkTree || workTreeRoot == absoluteRoot {
		return
	}
	currentDirectory := filepath.Dir(absoluteRoot)
	for {
		walker.loadDirectoryScope(currentDirectory, scopes)
		if currentDirectory == workTreeRoot {
			return
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return
		}
		currentDirectory = parentDirectory
	}
}

// loadDirectoryScope compiles the ignore files that live directly in directoryPath.
func (walker *IgnoreWalker) loadDirectoryScope(directoryPath string, scopes ignoreScopes) {
	var ignoreFilePaths [ignoreKindCount]string
	if walker.options.UseIgnoreFile {
		ignoreFilePaths[ignoreKindIgnoreFile] = filepath.Join(directoryPath, utils.IgnoreFileName)
	}
	if walker.options.UseGitignore {
		ignoreFilePaths[ignoreKindGitignore] = filepath.Join(directoryPath, utils.GitIgnoreFileName)
		ignoreFilePaths[ignoreKindGitExclude] = filepath.Join(directoryPath, utils.GitDirectoryName, filepath.FromSlash(utils.GitExcludeRelativePath))
	}

	var rules directoryRules
	loadedAny := false
	for kind, ignoreFilePath := range ignoreFilePaths {
		if ignoreFilePath == "" {
			continue
		}
		ignoreRules, loadError := config.LoadIgnoreRules(ignoreFilePath)
		if loadError != nil {
			walker.logger.Warn(fmt.Sprintf(warningIgnoreFileFormat, directoryPath, loadError))
			continue
		}
		if ignoreRules != nil {
			rules[kind] = ignoreRules
			loadedAny = true
		}
	}
	if loadedAny {
		scopes[directoryPath] = &rules
	}
}

// isIgnored decides absolutePath against the scopes of its ancestor directories. Kinds are
// consulted in rank order and, within a kind, the deepest directory with a matching pattern
// decides, so a "!" pattern can re-include what a shallower or lower ranked file excluded.
// Each rule set sees the path relative to its own directory, with a trailing slash for
// directories.
func (walker *IgnoreWalker) isIgnored(absolutePath string, isDirectory bool, scopes ignoreScopes) bool {
	if len(scopes) == 0 {
		return false
	}
	for kind := ignoreKindIgnoreFile; kind < ignoreKindCount; kind++ {
		decision, pattern := decideKind(absolutePath, isDirectory, scopes, kind)
		switch decision {
		case config.IgnoreDecisionIgnore:
			walker.logger.Debug(fmt.Sprintf(debugIgnoredPathFormat, absolutePath, pattern))
			return true
		case config.IgnoreDecisionWhitelist:
			return false
		}
	}
	return false
}

func decideKind(absolutePath string, isDirectory bool, scopes ignoreScopes, kind ignoreKind) (config.IgnoreDecision, string) {
	currentDirectory := filepath.Dir(absolutePath)
	for {
		if rules, found := scopes[currentDirectory]; found && rules[kind] != nil {
			relativePath := utils.RelativePathOrSelf(absolutePath, currentDirectory)
			if isDirectory {
				relativePath += directoryMatchSuffix
			}
			if decision, pattern := rules[kind].Decide(relativePath); decision != config.IgnoreDecisionNone {
				return decision, pattern
			}
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return config.IgnoreDecisionNone, ""
		}
		currentDirectory = parentDirectory
	}
}

// isRegularFile reports whether the entry is a regular file or a symlink resolving to one.
func isRegularFile(path string, directoryEntry fs.DirEntry) bool {
	if directoryEntry.Type().IsRegular() {
		return true
	}
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := os.Stat(path)
	return statError == nil && targetInfo.Mode().IsRegular()
}

func displayPath(root string, absoluteRoot string, absolutePath string) string {
	relativePath, relativeError := filepath.Rel(absoluteRoot, absolutePath)
	if relativeError != nil {
		return absolutePath
	}
	return filepath.Join(root, relativePath)
}

var _ Walker = (*IgnoreWalker)(nil)
