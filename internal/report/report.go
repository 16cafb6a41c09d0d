// Package report renders attendance sessions as a plain-text table for the
// trackar-report command.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/trackar/server/internal/trackar/types"
)

func init() {
	fr := language.French
	for key, msg := range map[string]string{
		"Attendance for %s (%s)":                 "Présence du %s (%s)",
		"Attendance, all days (%s)":              "Présence, tous les jours (%s)",
		"NAME":                                   "NOM",
		"DAY":                                    "JOUR",
		"LOCATION":                               "LIEU",
		"CHECK IN":                               "ENTRÉE",
		"CHECK OUT":                              "SORTIE",
		"STATUS":                                 "STATUT",
		"In Office":                              "Au bureau",
		"Departed":                               "Parti",
		"Checked In":                             "Pointé",
		"No sessions.":                           "Aucune session.",
		"%d sessions: %d in office, %d departed": "%d sessions : %d au bureau, %d partis",
	} {
		_ = message.SetString(fr, key, msg)
	}
}

// Render writes resp as a table followed by the summary counts, translated
// for tag where a translation exists.
func Render(w io.Writer, resp types.SessionsResponse, tag language.Tag) error {
	p := message.NewPrinter(tag)

	if resp.Day != "" {
		p.Fprintf(w, "Attendance for %s (%s)", resp.Day, resp.TimeZone)
	} else {
		p.Fprintf(w, "Attendance, all days (%s)", resp.TimeZone)
	}
	fmt.Fprint(w, "\n\n")

	if len(resp.Sessions) == 0 {
		p.Fprintf(w, "No sessions.")
		fmt.Fprintln(w)
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Sprintf("NAME"), p.Sprintf("DAY"), p.Sprintf("LOCATION"),
			p.Sprintf("CHECK IN"), p.Sprintf("CHECK OUT"), p.Sprintf("STATUS"))
		for _, s := range resp.Sessions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				s.PersonName, s.Day, s.Location,
				orDash(s.CheckIn), orDash(s.CheckOut), statusLabel(p, s.StatusLabel))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	p.Fprintf(w, "%d sessions: %d in office, %d departed",
		resp.Summary.Total, resp.Summary.Active, resp.Summary.Departed)
	_, err := fmt.Fprintln(w)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func statusLabel(p *message.Printer, label string) string {
	switch label {
	case "In Office":
		return p.Sprintf("In Office")
	case "Departed":
		return p.Sprintf("Departed")
	case "Checked In":
		return p.Sprintf("Checked In")
	default:
		return label
	}
}
