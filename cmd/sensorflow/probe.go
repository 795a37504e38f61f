package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/ghalamif/SensorFlow/internal/adapters/producer"
	"github.com/ghalamif/SensorFlow/internal/adapters/shm"
	"github.com/ghalamif/SensorFlow/internal/app/config"
	"github.com/ghalamif/SensorFlow/internal/app/pipeline"
	"github.com/ghalamif/SensorFlow/internal/classify"
	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/extract"
	"github.com/ghalamif/SensorFlow/internal/layout"
)

type probeReport struct {
	Header   layout.Header   `json:"header"`
	Sensors  []probeSensor   `json:"sensors"`
	Readings []probeReading  `json:"readings"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

type probeSensor struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Relevant bool   `json:"relevant"`
}

type probeReading struct {
	Sensor uint32  `json:"sensor"`
	Type   string  `json:"type"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Metric string  `json:"metric,omitempty"`
}

func probeCommand(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("probe", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "", "Path to configuration file (segment.* and layout.* are used)")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	seg, err := shm.Open(cfg.Segment)
	if err != nil {
		return pipeline.ExplainAttach(err, producer.NewProbe(cfg.Producer), nil)
	}
	defer seg.Close()

	buf, err := pipeline.CopySegment(nil, seg)
	if err != nil {
		return fmt.Errorf("read segment: %w", err)
	}
	rep, err := buildReport(buf, cfg.Layout.Policy())
	if err != nil {
		return fmt.Errorf("decode (%s): %w", pipeline.FailureReason(err), err)
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return printReport(out, rep)
}

func buildReport(buf []byte, pol layout.Policy) (probeReport, error) {
	cat, err := layout.Decode(buf, pol)
	if err != nil {
		return probeReport{}, err
	}
	snap, err := pipeline.RunCycle(buf, pol, 1, time.Now())
	if err != nil {
		return probeReport{}, err
	}

	rep := probeReport{Header: cat.Header, Snapshot: snap}
	for i, s := range cat.Sensors {
		name := s.NameUser
		if name == "" {
			name = s.NameOrig
		}
		rep.Sensors = append(rep.Sensors, probeSensor{Index: i, Name: name, Relevant: classify.Sensor(s)})
	}
	for _, r := range cat.Readings {
		label := r.LabelUser
		if label == "" {
			label = r.LabelOrig
		}
		pr := probeReading{Sensor: r.SensorIndex, Type: r.Type.String(), Label: label, Value: r.Value, Unit: r.Unit}
		if m, ok := extract.MetricFor(r.Type); ok && rep.Sensors[r.SensorIndex].Relevant {
			pr.Metric = m.String()
		}
		rep.Readings = append(rep.Readings, pr)
	}
	return rep, nil
}

func printReport(out io.Writer, rep probeReport) error {
	h := rep.Header
	fmt.Fprintf(out, "segment version %d.%d, last poll %s, %d sensors, %d readings\n\n",
		h.Version, h.Revision, h.LastPoll().Format(time.RFC3339), h.SensorCount, h.ReadingCount)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSENSOR\tRELEVANT")
	for _, s := range rep.Sensors {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", s.Index, s.Name, s.Relevant)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SENSOR\tTYPE\tLABEL\tVALUE\tMETRIC")
	for _, r := range rep.Readings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.3f %s\t%s\n", r.Sensor, r.Type, r.Label, r.Value, r.Unit, r.Metric)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, m := range domain.Metrics {
		if v, ok := rep.Snapshot.Value(m); ok {
			fmt.Fprintf(out, "%-16s %.3f\n", m, v)
		} else {
			fmt.Fprintf(out, "%-16s -\n", m)
		}
	}
	return nil
}
