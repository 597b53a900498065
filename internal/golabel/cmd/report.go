package cmd

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"golabel/internal/imagedb"
)

// Report is the JSON output structure for regression testing.
type Report struct {
	Binary  string       `json:"binary"`
	Digest  string       `json:"digest"`
	Pass    string       `json:"pass"`
	Renamed int          `json:"renamed"`
	Symbols []SymbolInfo `json:"symbols"`
}

// SymbolInfo is one symbol defined by a pass.
type SymbolInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	addrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
)

// buildReport collects the symbols a pass defined, identified by prefix.
func buildReport(path, pass string, renamed int, db *imagedb.DB, prefixes ...string) (Report, error) {
	report := Report{
		Binary:  path,
		Pass:    pass,
		Renamed: renamed,
		Symbols: []SymbolInfo{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("digest binary: %w", err)
	}
	report.Digest = fmt.Sprintf("%x", sha256.Sum256(data))

	for _, sym := range db.Symbols() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(sym.Name, prefix) {
				report.Symbols = append(report.Symbols, SymbolInfo{
					Address: fmt.Sprintf("0x%x", sym.Addr),
					Name:    sym.Name,
				})
				break
			}
		}
	}
	return report, nil
}

// emit writes the report as JSON or as a styled summary.
func emit(report Report, asJSON, full bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s: %s", report.Pass, report.Binary)))
	fmt.Printf("%s symbols defined\n", countStyle.Render(fmt.Sprintf("%d", report.Renamed)))

	symbols := report.Symbols
	const summaryLimit = 20
	truncated := 0
	if !full && len(symbols) > summaryLimit {
		truncated = len(symbols) - summaryLimit
		symbols = symbols[:summaryLimit]
	}
	for _, sym := range symbols {
		fmt.Printf("  %s  %s\n", addrStyle.Render(sym.Address), nameStyle.Render(sym.Name))
	}
	if truncated > 0 {
		fmt.Printf("  ... %d more (use --full to list all)\n", truncated)
	}
	return nil
}
