// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/strato-cloud/strato/lib/projection"
)

// yamlRenderer streams one YAML document per record, separated by the
// document marker. An empty stream emits nothing.
type yamlRenderer struct {
	opts  Options
	proj  *projection.Projection
	wrote bool
}

func (y *yamlRenderer) Add(record any) error {
	out := y.opts.sink(y.proj)
	if y.wrote {
		if _, err := fmt.Fprintln(out, "---"); err != nil {
			return err
		}
	}
	y.wrote = true

	doc := sanitize(projected(y.proj, record), y.proj.Attrs)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("rendering yaml: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func (y *yamlRenderer) Flush() error  { return nil }
func (y *yamlRenderer) Finish() error { return nil }

// jsonRenderer buffers the stream and emits a single JSON value at the
// end: an array, or a bare object in single-record mode. Key order is
// stable.
type jsonRenderer struct {
	opts    Options
	proj    *projection.Projection
	records []any
}

func (j *jsonRenderer) Add(record any) error {
	j.records = append(j.records, sanitize(projected(j.proj, record), j.proj.Attrs))
	return nil
}

func (j *jsonRenderer) Flush() error { return nil }

func (j *jsonRenderer) Finish() error {
	var doc any = j.records
	if j.opts.Single && len(j.records) == 1 {
		doc = j.records[0]
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering json: %w", err)
	}
	out := j.opts.sink(j.proj)
	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}
