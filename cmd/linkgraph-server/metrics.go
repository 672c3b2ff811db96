package main

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// promMetricsHandler renders known expvar metrics in Prometheus text format.
func promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Define metadata for known metrics
	type meta struct {
		typ, help string
		isMap     bool
		label     string
	}
	metas := map[string]meta{
		"linkgraph_store_mutations_total":       {typ: "counter", help: "Link store mutations issued", isMap: true, label: "op"},
		"linkgraph_store_failures_total":        {typ: "counter", help: "Link store mutations failed", isMap: true, label: "op"},
		"linkgraph_validation_failures_total":   {typ: "counter", help: "Link validation failures", isMap: true, label: "code"},
		"linkgraph_session_reloads_total":       {typ: "counter", help: "Session reloads from the authoritative store", isMap: false},
		"linkgraph_session_rollbacks_total":     {typ: "counter", help: "Optimistic mutations rolled back", isMap: false},
		"linkgraph_optimistic_mutations_total":  {typ: "counter", help: "Optimistic mutations applied locally", isMap: false},
		"linkgraph_session_snapshots_total":     {typ: "counter", help: "Session snapshots saved", isMap: false},
	}

	// Collect variable names deterministically
	varNames := make([]string, 0, 64)
	expvar.Do(func(kv expvar.KeyValue) {
		varNames = append(varNames, kv.Key)
	})
	sort.Strings(varNames)

	printed := make(map[string]bool)

	writeHeader := func(name string, m meta) {
		if printed[name] {
			return
		}
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, sanitizeHelp(m.help))
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, m.typ)
		printed[name] = true
	}

	for _, name := range varNames {
		v := expvar.Get(name)
		m, known := metas[name]
		if !known {
			// Minimal rendering: publish as an untyped gauge if numeric
			if iv, ok := v.(*expvar.Int); ok {
				_, _ = fmt.Fprintf(w, "# TYPE %s gauge\n", name)
				_, _ = fmt.Fprintf(w, "%s %s\n", name, iv.String())
			}
			continue
		}
		writeHeader(name, m)
		if m.isMap {
			if mp, ok := v.(*expvar.Map); ok {
				// Collect subkeys deterministically
				sub := make([]expvar.KeyValue, 0, 8)
				mp.Do(func(kv expvar.KeyValue) { sub = append(sub, kv) })
				sort.Slice(sub, func(i, j int) bool { return sub[i].Key < sub[j].Key })
				for _, kv := range sub {
					// Expect numeric string; emit sample with label
					fmt.Fprintf(w, "%s{%s=\"%s\"} %s\n", name, m.label, escapeLabel(kv.Key), kv.Value.String())
				}
			}
		} else {
			// Scalar metrics
			fmt.Fprintf(w, "%s %s\n", name, v.String())
		}
	}
}

func sanitizeHelp(s string) string {
	// Replace newlines with spaces to satisfy Prometheus text format
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeLabel(s string) string {
	// Escape backslash, double-quote, and newline per Prometheus format
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
