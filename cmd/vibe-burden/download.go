package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// getGENCODEURL returns the GTF URL for the given assembly.
func getGENCODEURL(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
	}
	return fmt.Sprintf("%s/gencode.%s.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
}

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download GENCODE transcript annotations",
		Long: `Download the GENCODE basic annotation GTF used as the transcript coordinate
database for 'vibe-burden regions' and 'vibe-burden import'.`,
		Example: `  vibe-burden download
  vibe-burden download --assembly GRCh37
  vibe-burden download --data-dir /data/gencode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, viper.GetString("assembly"), viper.GetString("data-dir"))
		},
	}
	cmd.Flags().String("assembly", "GRCh38", "genome assembly: GRCh37 or GRCh38")
	cmd.Flags().String("data-dir", "", "data directory (default: ~/.vibe-burden/)")
	return cmd
}

func runDownload(cmd *cobra.Command, assembly, dataDir string) error {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDirName)
	}

	destDir := filepath.Join(dataDir, strings.ToLower(assembly))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", destDir, err)
	}

	url := getGENCODEURL(assembly)
	dest := filepath.Join(destDir, filepath.Base(url))
	logger.Info("downloading GENCODE annotations",
		zap.String("version", gencodeVersion),
		zap.String("assembly", assembly),
		zap.String("dest", destDir))

	if err := downloadFile(url, dest); err != nil {
		return fmt.Errorf("download GTF: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s\n", dest)
	fmt.Fprintf(cmd.OutOrStdout(), "To build the coordinate database, run:\n  vibe-burden import --assembly %s\n", assembly)
	return nil
}

// downloadFile downloads url to destPath, skipping files that already exist.
func downloadFile(url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		logger.Info("file already exists, skipping",
			zap.String("file", filepath.Base(destPath)),
			zap.String("size", formatSize(info.Size())))
		return nil
	}

	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{total: resp.ContentLength, lastLog: time.Now()}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	logger.Info("download complete", zap.String("size", formatSize(pw.downloaded)))
	return nil
}

// progressWriter logs download progress at most once per second.
type progressWriter struct {
	total      int64
	downloaded int64
	lastLog    time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.downloaded += int64(len(p))
	if time.Since(pw.lastLog) > time.Second {
		fields := []zap.Field{zap.String("downloaded", formatSize(pw.downloaded))}
		if pw.total > 0 {
			fields = append(fields, zap.String("percent",
				fmt.Sprintf("%.1f%%", float64(pw.downloaded)/float64(pw.total)*100)))
		}
		logger.Debug("download progress", fields...)
		pw.lastLog = time.Now()
	}
	return len(p), nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

const dataDirName = ".vibe-burden"

// DefaultDataPath returns the per-assembly data directory.
func DefaultDataPath(assembly string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, dataDirName, strings.ToLower(assembly))
}

// DefaultDBPath returns the default coordinate database path for assembly.
func DefaultDBPath(assembly string) string {
	dir := DefaultDataPath(assembly)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "transcripts.duckdb")
}

// FindGENCODEGTF looks for a GENCODE GTF in the default location.
func FindGENCODEGTF(assembly string) (string, bool) {
	dir := DefaultDataPath(assembly)
	if dir == "" {
		return "", false
	}

	pattern := "gencode.v*.annotation.gtf.gz"
	if strings.EqualFold(assembly, "GRCh37") {
		pattern = "gencode.v*lift37*.annotation.gtf.gz"
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}
