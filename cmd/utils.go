package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/sabriallani/GenRapport/internal/models"
)

// printVerdictTable renders one line per finding followed by the verdict totals
func printVerdictTable(w io.Writer, r *models.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Test Name", "Interface", "Result", "Risk Level"})
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	for i, f := range r.Findings {
		risk := riskLevel(f)
		if risk == "" {
			risk = "-"
		}
		table.Append([]string{strconv.Itoa(i + 1), f.TestName, f.Interface, colorVerdict(f.Result), risk})
	}
	table.Render()

	resisted, vulnerable := r.VerdictCounts()
	fmt.Fprintf(w, "%d tests: %s resisted, %s vulnerable\n",
		len(r.Findings),
		color.GreenString(strconv.Itoa(resisted)),
		color.RedString(strconv.Itoa(vulnerable)))
}

func colorVerdict(v models.Verdict) string {
	if v == models.VerdictVulnerable {
		return color.New(color.FgRed, color.Bold).Sprint(v.String())
	}
	return color.GreenString(v.String())
}

// riskLevel finds the extracted risk field whatever casing or markup the model used
func riskLevel(f models.Finding) string {
	for _, field := range f.Fields {
		name := strings.ToLower(strings.Trim(field.Name, "-*# "))
		if name == "risk level" || name == "risk" || name == "severity" {
			return field.Value
		}
	}
	return ""
}
