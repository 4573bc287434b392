// Package vector defines the records stored in the vector index, the
// namespace convention, and the index schema.
package vector

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ClassName is the Weaviate class holding all code chunks.
const ClassName = "CodeChunk"

// Record is one embedded chunk ready for upsert. ID is deterministic so
// re-processing the same file/chunk overwrites instead of duplicating.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]interface{}
}

// Match is one similarity-query hit, recovered from stored metadata.
type Match struct {
	Score        float32 `json:"score"`
	RepositoryID int     `json:"repository_id"`
	FilePath     string  `json:"file_path"`
	Content      string  `json:"content"`
}

// NormalizeRepoName lowercases a repository name and replaces spaces and
// hyphens with underscores.
func NormalizeRepoName(name string) string {
	n := strings.ToLower(name)
	n = strings.ReplaceAll(n, " ", "_")
	n = strings.ReplaceAll(n, "-", "_")
	return n
}

// Namespace derives the index partition for a repository from its name.
// Two names that normalize identically share a partition.
func Namespace(repoName string) string {
	return "repo_" + NormalizeRepoName(repoName)
}

// SanitizePath replaces path separators and dots with underscores for use in
// record identifiers.
func SanitizePath(path string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ".", "_")
	return r.Replace(path)
}

// RecordID composes the deterministic identifier for one chunk of one file.
// chunkIndex is 1-based.
func RecordID(repoName, filePath string, chunkIndex int) string {
	return NormalizeRepoName(repoName) + "_" + SanitizePath(filePath) + "_" + strconv.Itoa(chunkIndex)
}

// ObjectUUID maps a deterministic record id onto the UUID the index requires.
// Equal ids always yield equal UUIDs.
func ObjectUUID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}
