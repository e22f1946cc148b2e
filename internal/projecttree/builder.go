package projecttree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	entryMarkerConstant             = "|-- "
	nestedIndentConstant            = "|   "
	lastEntryIndentConstant         = "    "
	directorySuffixConstant         = "/"
	descriptionTemplateConstant     = " - %s "
	directoryListingFailureTemplate = "unable to list directory %s: %w"
)

// BuilderConfiguration controls tree rendering.
type BuilderConfiguration struct {
	// IgnoredEntryNames are base names skipped entirely, including their children.
	IgnoredEntryNames []string
	// EntryDescriptions maps base names to short descriptions appended to matching entries.
	EntryDescriptions map[string]string
}

// Builder renders directory trees as text.
type Builder struct {
	configuration BuilderConfiguration
}

// NewBuilder returns a builder using the provided configuration.
func NewBuilder(configuration BuilderConfiguration) *Builder {
	return &Builder{configuration: configuration}
}

// BuildTree renders the hierarchy rooted at rootPath. Directories carry a
// trailing slash; entries are listed in directory order with nesting shown by
// indentation.
func (builder *Builder) BuildTree(rootPath string) (string, error) {
	treeBuilder := strings.Builder{}
	renderError := builder.renderEntry(&treeBuilder, rootPath, "", false)
	if renderError != nil {
		return "", renderError
	}
	return treeBuilder.String(), nil
}

func (builder *Builder) renderEntry(treeBuilder *strings.Builder, entryPath string, linePrefix string, lastEntry bool) error {
	entryName := filepath.Base(entryPath)
	if builder.entryIgnored(entryName) {
		return nil
	}

	entryInformation, statError := os.Stat(entryPath)
	if statError != nil {
		return fmt.Errorf(directoryListingFailureTemplate, entryPath, statError)
	}

	treeBuilder.WriteString(linePrefix)
	treeBuilder.WriteString(entryMarkerConstant)
	treeBuilder.WriteString(entryName)
	if entryDescription, descriptionExists := builder.configuration.EntryDescriptions[entryName]; descriptionExists {
		treeBuilder.WriteString(fmt.Sprintf(descriptionTemplateConstant, entryDescription))
	}

	if !entryInformation.IsDir() {
		treeBuilder.WriteString("\n")
		return nil
	}

	treeBuilder.WriteString(directorySuffixConstant)
	treeBuilder.WriteString("\n")

	childEntries, readError := os.ReadDir(entryPath)
	if readError != nil {
		return fmt.Errorf(directoryListingFailureTemplate, entryPath, readError)
	}

	childPrefix := linePrefix + nestedIndentConstant
	if lastEntry {
		childPrefix = linePrefix + lastEntryIndentConstant
	}

	for childIndex, childEntry := range childEntries {
		childPath := filepath.Join(entryPath, childEntry.Name())
		childIsLast := childIndex == len(childEntries)-1
		if renderError := builder.renderEntry(treeBuilder, childPath, childPrefix, childIsLast); renderError != nil {
			return renderError
		}
	}

	return nil
}

func (builder *Builder) entryIgnored(entryName string) bool {
	for _, ignoredEntryName := range builder.configuration.IgnoredEntryNames {
		if entryName == ignoredEntryName {
			return true
		}
	}
	return false
}
