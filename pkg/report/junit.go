package report

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/cxvoice/pkg/scenario"
)

type junitSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name      string      `xml:"name,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Errors    int         `xml:"errors,attr"`
	Skipped   int         `xml:"skipped,attr"`
	Time      string      `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr"`
	Cases     []junitCase `xml:"testcase"`
	SystemErr string      `xml:"system-err,omitempty"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnit renders the result as JUnit XML. Setup failures are reported as
// suite errors; steps that never ran are reported as skipped.
func JUnit(result *scenario.SuiteResult) ([]byte, error) {
	suite := junitSuite{
		Name:      result.Suite,
		Tests:     len(result.Steps),
		Time:      seconds(result.Duration.Seconds()),
		Timestamp: result.StartTime.UTC().Format("2006-01-02T15:04:05"),
	}

	for _, s := range result.Steps {
		tc := junitCase{
			Name:      s.Name,
			ClassName: "cxvoice." + result.Suite,
			Time:      seconds(s.Duration.Seconds()),
		}
		switch s.Status {
		case scenario.StatusFailed:
			suite.Failures++
			tc.Failure = &junitFailure{Message: firstLine(s.Error), Body: s.Error}
		case scenario.StatusSkipped:
			suite.Skipped++
			tc.Skipped = &junitSkipped{Message: s.SkipReason}
		case scenario.StatusNotRun:
			suite.Skipped++
			tc.Skipped = &junitSkipped{Message: "not run: an earlier step failed"}
		case scenario.StatusFiltered:
			suite.Skipped++
			tc.Skipped = &junitSkipped{Message: "filtered"}
		}
		suite.Cases = append(suite.Cases, tc)
	}

	if _, failed := result.Failed(); !failed && result.Error != "" {
		suite.Errors = 1
		suite.SystemErr = result.Error
	}
	if len(result.TeardownErrors) > 0 {
		if suite.SystemErr != "" {
			suite.SystemErr += "\n"
		}
		suite.SystemErr += "teardown: " + strings.Join(result.TeardownErrors, "; ")
	}

	out, err := xml.MarshalIndent(junitSuites{Suites: []junitSuite{suite}}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal junit report: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func seconds(s float64) string {
	return fmt.Sprintf("%.3f", s)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
