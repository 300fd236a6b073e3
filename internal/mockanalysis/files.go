package mockanalysis

import (
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"
)

// AcceptedExtensions are the sample formats offered for upload.
var AcceptedExtensions = []string{".fasta", ".fastq", ".csv", ".txt", ".fa", ".fq"}

// Accepts reports whether name has one of the accepted extensions.
func Accepts(name string) bool {
	return slices.Contains(AcceptedExtensions, strings.ToLower(filepath.Ext(name)))
}

// FormatSize renders a byte count in megabytes with two decimals.
func FormatSize(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}

// MIMEType guesses the media type of a sample file from its extension.
func MIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".fasta", ".fa":
		return "text/x-fasta"
	case ".fastq", ".fq":
		return "text/x-fastq"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "Unknown"
}
