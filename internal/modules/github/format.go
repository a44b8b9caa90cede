package github

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/jx"
)

// =============================================================================
// Compact formatters per tool — pure transformation: (toolName, JSON) → string
// =============================================================================

func formatCompact(toolName, jsonStr string) string {
	switch toolName {
	// Read: lists → CSV
	case "list_repos":
		return reposToCSV(jsonStr)
	case "list_files":
		return filesToCSV(jsonStr)
	case "list_issues":
		return issuesToCSV(jsonStr)
	case "list_prs":
		return prsToCSV(jsonStr)
	// Search → CSV
	case "search_code":
		return searchCodeToCSV(jsonStr)
	// Read: single item → MD
	case "get_repo":
		return repoToCompact(jsonStr)
	case "get_issue":
		return issueToCompact(jsonStr)
	case "get_pr":
		return prToCompact(jsonStr)
	case "read_file":
		return fileContentToCompact(jsonStr)
	// Write: trim to the fields a caller acts on
	case "write_file":
		return pickKeys(jsonStr, "path", "action", "commit")
	case "create_repo":
		return pickKeys(jsonStr, "full_name", "html_url")
	case "create_issue", "update_issue":
		return pickKeys(jsonStr, "number", "state", "html_url")
	case "merge_pr":
		return pickKeys(jsonStr, "merged", "sha", "method")
	default:
		return jsonStr
	}
}

// pickKeys extracts only the specified keys from a JSON object, preserving
// their raw encoding.
func pickKeys(jsonStr string, keys ...string) string {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	d := jx.DecodeStr(jsonStr)
	var e jx.Encoder
	e.ObjStart()
	err := d.Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		if want[key] && raw.Type() != jx.Null {
			e.FieldStart(key)
			e.Raw(raw)
		}
		return nil
	})
	if err != nil {
		return jsonStr
	}
	e.ObjEnd()
	return e.String()
}

// reposToCSV: name,visibility,language,description
func reposToCSV(jsonStr string) string {
	var repos []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &repos); err != nil {
		return jsonStr
	}
	if len(repos) == 0 {
		return "# 0 repos"
	}
	var sb strings.Builder
	sb.WriteString("```csv\nname,visibility,language,description\n")
	for _, r := range repos {
		desc := str(r, "description")
		if len(desc) > 80 {
			desc = desc[:80] + "..."
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s\n",
			csvEscape(str(r, "name")),
			str(r, "visibility"),
			str(r, "language"),
			csvEscape(desc),
		))
	}
	sb.WriteString("```")
	return sb.String()
}

// filesToCSV: type,name,size,path
func filesToCSV(jsonStr string) string {
	var entries []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &entries); err != nil {
		return jsonStr
	}
	if len(entries) == 0 {
		return "# 0 entries"
	}
	var sb strings.Builder
	sb.WriteString("```csv\ntype,name,size,path\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%s\n",
			str(e, "type"),
			csvEscape(str(e, "name")),
			intVal(e, "size"),
			csvEscape(str(e, "path")),
		))
	}
	sb.WriteString("```")
	return sb.String()
}

// repoToCompact: single repo detail
func repoToCompact(jsonStr string) string {
	var r map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &r); err != nil {
		return jsonStr
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n", str(r, "full_name")))
	if desc := str(r, "description"); desc != "" {
		sb.WriteString(fmt.Sprintf("- **Description**: %s\n", desc))
	}
	if lang := str(r, "language"); lang != "" {
		sb.WriteString(fmt.Sprintf("- **Language**: %s\n", lang))
	}
	sb.WriteString(fmt.Sprintf("- **Stars**: %d\n", intVal(r, "stars")))
	sb.WriteString(fmt.Sprintf("- **Default Branch**: %s\n", str(r, "default_branch")))
	sb.WriteString(fmt.Sprintf("- **Visibility**: %s\n", str(r, "visibility")))
	if updated := str(r, "updated_at"); len(updated) >= 10 {
		sb.WriteString(fmt.Sprintf("- **Updated**: %s\n", updated[:10]))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// issuesToCSV: number,title,state,labels
func issuesToCSV(jsonStr string) string {
	var issues []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &issues); err != nil {
		return jsonStr
	}
	if len(issues) == 0 {
		return "# 0 issues"
	}
	var sb strings.Builder
	sb.WriteString("```csv\nnumber,title,state,labels\n")
	for _, i := range issues {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s\n",
			intVal(i, "number"),
			csvEscape(str(i, "title")),
			str(i, "state"),
			csvEscape(labelsStr(i)),
		))
	}
	sb.WriteString("```")
	return sb.String()
}

// issueToCompact: single issue
func issueToCompact(jsonStr string) string {
	var i map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &i); err != nil {
		return jsonStr
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# #%d: %s\n", intVal(i, "number"), str(i, "title")))
	sb.WriteString(fmt.Sprintf("- **State**: %s\n", str(i, "state")))
	if labels := labelsStr(i); labels != "" {
		sb.WriteString(fmt.Sprintf("- **Labels**: %s\n", labels))
	}
	if assignees := stringsStr(i, "assignees"); assignees != "" {
		sb.WriteString(fmt.Sprintf("- **Assignees**: %s\n", assignees))
	}
	if created := str(i, "created_at"); len(created) >= 10 {
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", created[:10]))
	}
	if body := str(i, "body"); body != "" {
		if len(body) > 3000 {
			body = body[:3000] + "...(truncated)"
		}
		sb.WriteString(fmt.Sprintf("\n## Body\n%s\n", body))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// prsToCSV: number,title,state,head,base
func prsToCSV(jsonStr string) string {
	var prs []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &prs); err != nil {
		return jsonStr
	}
	if len(prs) == 0 {
		return "# 0 PRs"
	}
	var sb strings.Builder
	sb.WriteString("```csv\nnumber,title,state,head,base\n")
	for _, p := range prs {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s\n",
			intVal(p, "number"),
			csvEscape(str(p, "title")),
			str(p, "state"),
			csvEscape(str(p, "head")),
			csvEscape(str(p, "base")),
		))
	}
	sb.WriteString("```")
	return sb.String()
}

// prToCompact: single PR detail
func prToCompact(jsonStr string) string {
	var p map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return jsonStr
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# #%d: %s\n", intVal(p, "number"), str(p, "title")))
	sb.WriteString(fmt.Sprintf("- **State**: %s\n", str(p, "state")))
	if author := str(p, "author"); author != "" {
		sb.WriteString(fmt.Sprintf("- **Author**: %s\n", author))
	}
	sb.WriteString(fmt.Sprintf("- **Head**: %s\n", str(p, "head")))
	sb.WriteString(fmt.Sprintf("- **Base**: %s\n", str(p, "base")))
	if mergeable, ok := p["mergeable"].(bool); ok {
		sb.WriteString(fmt.Sprintf("- **Mergeable**: %v\n", mergeable))
	}
	sb.WriteString(fmt.Sprintf("- **Changes**: +%d -%d in %d files\n",
		intVal(p, "additions"), intVal(p, "deletions"), intVal(p, "changed_files")))
	return strings.TrimSuffix(sb.String(), "\n")
}

// fileContentToCompact: file content
func fileContentToCompact(jsonStr string) string {
	var f map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &f); err != nil {
		return jsonStr
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n", str(f, "path")))
	sb.WriteString(fmt.Sprintf("- **Size**: %d bytes\n", intVal(f, "size")))
	if boolVal(f, "binary") {
		sb.WriteString("- **Binary**: true\n")
		sb.WriteString(fmt.Sprintf("- **SHA**: %s\n", str(f, "sha")))
	}
	if content := str(f, "content"); content != "" {
		if len(content) > 5000 {
			content = content[:5000] + "...(truncated)"
		}
		sb.WriteString(fmt.Sprintf("\n```\n%s\n```\n", content))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// searchCodeToCSV: repo,path
func searchCodeToCSV(jsonStr string) string {
	var wrapper map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &wrapper); err != nil {
		return jsonStr
	}
	total := intVal(wrapper, "total")
	items, ok := wrapper["items"].([]any)
	if !ok {
		return jsonStr
	}
	if len(items) == 0 {
		return fmt.Sprintf("# 0/%d code results", total)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("```csv  # %d/%d results\nrepo,path\n", len(items), total))
	for _, raw := range items {
		r, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s,%s\n",
			csvEscape(str(r, "repo")),
			csvEscape(str(r, "path")),
		))
	}
	sb.WriteString("```")
	return sb.String()
}

// =============================================================================
// Helpers
// =============================================================================

func str(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func intVal(obj map[string]any, key string) int {
	if v, ok := obj[key].(float64); ok {
		return int(v)
	}
	return 0
}

func boolVal(obj map[string]any, key string) bool {
	if v, ok := obj[key].(bool); ok {
		return v
	}
	return false
}

func labelsStr(obj map[string]any) string {
	return stringsStr(obj, "labels")
}

func stringsStr(obj map[string]any, key string) string {
	items, ok := obj[key].([]any)
	if !ok || len(items) == 0 {
		return ""
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ";")
}

func csvEscape(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",\"\n\r") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}
