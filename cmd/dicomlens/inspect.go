package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrsinham/dicomlens/internal/dicom"
	"github.com/mrsinham/dicomlens/internal/util"
)

type inspectOptions struct {
	scope string
	tag   string
}

func newInspectCmd(a *app) *cobra.Command {
	o := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the metadata of a DICOM file",
		Long: `The inspect command decodes a DICOM file and lists its metadata sorted by tag.

Example:
  dicomlens inspect IM0001
  dicomlens inspect IM0001 --scope patient
  dicomlens inspect IM0001 --tag PatientName
  dicomlens inspect IM0001 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(o, args[0])
		},
	}
	cmd.Flags().StringVar(&o.scope, "scope", "", "Only show tags of one level: patient, study, series, image")
	cmd.Flags().StringVar(&o.tag, "tag", "", "Print the value of a single tag by name")
	return cmd
}

// metadataEntry is one line of inspect output. Name is the keyword --tag
// accepts; Label the human-readable dictionary name.
type metadataEntry struct {
	Key   string `json:"key"`
	Name  string `json:"name,omitempty"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

func (a *app) runInspect(o *inspectOptions, path string) error {
	data, err := a.readInput(path)
	if err != nil {
		return err
	}
	ds, err := dicom.Decode(data, a.cfg.decoderOptions(a.logger)...)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if o.tag != "" {
		info, err := util.GetTagByName(o.tag)
		if err != nil {
			return err
		}
		v, ok := ds.Metadata.Get(info.Tag)
		if !ok {
			return fmt.Errorf("tag %s %s not present in %s", info.Name, info.Tag, path)
		}
		if a.jsonOut {
			return a.printJSON(metadataEntry{Key: info.Tag.Key(), Name: info.Name, Label: info.Label, Value: v.String()})
		}
		fmt.Fprintln(a.stdout, v.String())
		return nil
	}

	keys := ds.Metadata.Keys()
	if o.scope != "" {
		scope, err := util.ParseScope(o.scope)
		if err != nil {
			return err
		}
		keys = keys[:0]
		for _, info := range util.TagsInScope(scope) {
			if _, ok := ds.Metadata.Get(info.Tag); ok {
				keys = append(keys, info.Tag.Key())
			}
		}
	}

	entries := make([]metadataEntry, 0, len(keys))
	for _, key := range keys {
		e := metadataEntry{Key: key, Value: ds.Metadata.Text(key)}
		if t, err := dicom.ParseKey(key); err == nil {
			e.Name, e.Label = t.Keyword(), t.Name()
		}
		entries = append(entries, e)
	}
	if a.jsonOut {
		return a.printJSON(entries)
	}
	for _, e := range entries {
		fmt.Fprintf(a.stdout, "%-20s %-32s %s\n", e.Key, e.Name, e.Value)
	}
	a.printInfo("\n%d elements, %s\n", len(entries), ds.Syntax)
	return nil
}
