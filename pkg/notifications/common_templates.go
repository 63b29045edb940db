package notifications

var commonTemplates = map[string]string{
	`default`: `
{{- with .Report.Metrics -}}
{{.UpdatesAvailable}} of {{.MonitoredImages}} images have updates
{{- end -}}
{{- range .Updates}}
- {{.Reference}}
  {{- with .Result.Info -}}
    {{- if eq .Type "version"}}: {{.CurrentVersion}} -> {{.NewVersion}} ({{Title .VersionUpdateType}})
    {{- else}}: new digest {{ShortDigest .RemoteDigest}}
    {{- end -}}
  {{- end -}}
  {{- with .Server}} [{{.}}]{{end}}
{{- end -}}`,

	`summary`: `
{{- with .Report.Metrics -}}
{{.MonitoredImages}} Monitored, {{.UpdatesAvailable}} Updates ({{.MajorUpdates}} Major, {{.MinorUpdates}} Minor, {{.PatchUpdates}} Patch, {{.OtherUpdates}} Other), {{.Unknown}} Unknown
{{- end -}}`,

	`json.v1`: `{{ . | ToJSON }}`,
}
