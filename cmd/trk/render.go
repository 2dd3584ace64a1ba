package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avigan/tracker/internal/types"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		FatalError("encoding JSON: %v", err)
	}
	fmt.Println(string(data))
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func issueLine(issue *types.HydratedIssue) string {
	assignee := issue.AssignedTo
	if assignee == "" {
		assignee = "-"
	}
	tags := ""
	if len(issue.Tags) > 0 {
		names := make([]string, 0, len(issue.Tags))
		for _, tag := range issue.Tags {
			names = append(names, tag.Name)
		}
		tags = " [" + strings.Join(names, ",") + "]"
	}
	return fmt.Sprintf("#%-4d %-14s %-12s %s%s", issue.ID, issue.Status, assignee, issue.Title, tags)
}

func printIssue(issue *types.HydratedIssue) {
	fmt.Printf("Issue #%d: %s\n", issue.ID, issue.Title)
	fmt.Printf("  Status:    %s\n", issue.Status)
	fmt.Printf("  Author:    %s\n", issue.AuthorID)
	if issue.HasAssignee() {
		fmt.Printf("  Assignee:  %s\n", issue.AssignedTo)
	}
	fmt.Printf("  Created:   %s\n", formatTimestamp(issue.CreatedAt))
	if len(issue.Tags) > 0 {
		parts := make([]string, 0, len(issue.Tags))
		for _, tag := range issue.Tags {
			if tag.Color != "" {
				parts = append(parts, tag.Name+"("+tag.Color+")")
			} else {
				parts = append(parts, tag.Name)
			}
		}
		fmt.Printf("  Tags:      %s\n", strings.Join(parts, ", "))
	}
	if desc := issue.Description(); desc != "" {
		fmt.Printf("  Description:\n    %s\n", strings.ReplaceAll(desc, "\n", "\n    "))
	}
	if len(issue.Comments) > 0 {
		fmt.Printf("  Comments:\n")
		for _, c := range issue.Comments {
			marker := ""
			if c.ID == issue.DescriptionCommentID {
				marker = " (description)"
			}
			fmt.Printf("    [%d] %s at %s%s: %s\n", c.ID, c.Author, formatTimestamp(c.Timestamp), marker, c.Text)
		}
	}
}

func printMilestone(m *types.Milestone) {
	fmt.Printf("Milestone #%d: %s (%s .. %s)\n", m.ID, m.Name, m.StartDate, m.EndDate)
	if m.Description != "" {
		fmt.Printf("  %s\n", m.Description)
	}
	if len(m.IssueIDs) > 0 {
		ids := make([]string, 0, len(m.IssueIDs))
		for _, id := range m.IssueIDs {
			ids = append(ids, "#"+strconv.FormatInt(id, 10))
		}
		fmt.Printf("  Issues: %s\n", strings.Join(ids, ", "))
	}
}

// parseID parses a positional id argument, accepting an optional leading '#'.
func parseID(arg, what string) int64 {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		FatalError("invalid %s id %q", what, arg)
	}
	return id
}
