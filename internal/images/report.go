// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReportFile is the report name inside the image directory.
const ReportFile = "image_report.txt"

const reportRule = "============================================================"

// RenderReport formats the download counts and where the images went.
func RenderReport(stats Stats, dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	var b strings.Builder
	fmt.Fprintln(&b, reportRule)
	fmt.Fprintln(&b, "IMAGE SCRAPING REPORT")
	fmt.Fprintln(&b, reportRule)
	fmt.Fprintf(&b, "\nTotal images processed: %d\n", stats.Processed)
	fmt.Fprintf(&b, "Successful downloads: %d\n", stats.Downloaded)
	fmt.Fprintf(&b, "Failed downloads: %d\n", stats.Failed)
	fmt.Fprintf(&b, "Skipped (already exists): %d\n", stats.Skipped)
	fmt.Fprintf(&b, "Success rate: %.1f%%\n", stats.SuccessRate())
	fmt.Fprintf(&b, "Total size: %.2f MB\n", stats.SizeMB())
	fmt.Fprintf(&b, "\nImages saved to: %s\n", dir)
	b.WriteString(reportRule)
	return b.String()
}

// WriteReport renders the accumulated stats into image_report.txt and
// returns the report text and the file path.
func (d *Downloader) WriteReport() (string, string, error) {
	report := RenderReport(d.stats, d.cfg.OutputDir)
	path := filepath.Join(d.cfg.OutputDir, ReportFile)
	if err := os.WriteFile(path, []byte(report+"\n"), 0o644); err != nil {
		return "", "", fmt.Errorf("writing image report: %w", err)
	}
	return report, path, nil
}
