package cmd

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/ui/theme"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your progress, streak and weak spots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.progress.Profile(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(toProfileJSON(p))
		}
		printProfile(cmd.OutOrStdout(), p)
		return nil
	},
}

func printProfile(w io.Writer, p progress.Profile) {
	pr := message.NewPrinter(language.English)

	subj := "none (run 'olytutor subject set <name>')"
	if p.Subject != "" {
		subj = p.Subject.String()
	}
	pr.Fprintln(w, theme.Title.Render("Profile"))
	pr.Fprintf(w, "Subject:   %s\n", subj)
	pr.Fprintf(w, "Attempts:  %d (%d correct, %.1f%%)\n", p.TotalAttempts, p.Correct, p.Accuracy())
	pr.Fprintf(w, "Streak:    %s\n", theme.Streak.Render(pr.Sprintf("★ %d day", p.Streak.Current)))

	if len(p.BySubject) > 0 {
		pr.Fprintln(w)
		pr.Fprintln(w, theme.Label.Render("By subject"))
		for _, s := range p.BySubject {
			pr.Fprintf(w, "  %-12s  %5d attempts  %5.1f%%\n", s.Subject, s.Attempts, s.Accuracy())
		}
	}

	if len(p.Struggles) > 0 {
		pr.Fprintln(w)
		pr.Fprintln(w, theme.Label.Render("Needs work"))
		for _, s := range p.Struggles {
			pr.Fprintf(w, "  %-36s  %d of %d wrong\n", s.Topic, s.Errors, s.Attempts)
		}
	}

	if len(p.Recent) > 0 {
		pr.Fprintln(w)
		pr.Fprintln(w, theme.Label.Render("Recent attempts"))
		for _, a := range p.Recent {
			pr.Fprintf(w, "  %s  %s  %-12s  %s\n",
				a.CreatedAt.Local().Format("2006-01-02 15:04"),
				theme.Verdict(a.Correct), a.Subject, a.ID)
		}
	}
}

type profileJSON struct {
	Subject       string             `json:"subject,omitempty"`
	TotalAttempts int                `json:"total_attempts"`
	Correct       int                `json:"correct"`
	Accuracy      float64            `json:"accuracy"`
	Streak        int                `json:"streak"`
	LastActivity  string             `json:"last_activity,omitempty"`
	BySubject     []subjectStatsJSON `json:"by_subject"`
	Struggles     []struggleJSON     `json:"struggles"`
	Recent        []recentJSON       `json:"recent"`
}

type subjectStatsJSON struct {
	Subject  string  `json:"subject"`
	Attempts int     `json:"attempts"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type struggleJSON struct {
	Topic    string `json:"topic"`
	Errors   int    `json:"errors"`
	Attempts int    `json:"attempts"`
}

type recentJSON struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Correct   bool      `json:"correct"`
	CreatedAt time.Time `json:"created_at"`
}

func toProfileJSON(p progress.Profile) profileJSON {
	out := profileJSON{
		Subject:       p.Subject.String(),
		TotalAttempts: p.TotalAttempts,
		Correct:       p.Correct,
		Accuracy:      p.Accuracy(),
		Streak:        p.Streak.Current,
		LastActivity:  p.Streak.LastActivity,
		BySubject:     []subjectStatsJSON{},
		Struggles:     []struggleJSON{},
		Recent:        []recentJSON{},
	}
	for _, s := range p.BySubject {
		out.BySubject = append(out.BySubject, subjectStatsJSON{
			Subject: s.Subject.String(), Attempts: s.Attempts, Correct: s.Correct, Accuracy: s.Accuracy(),
		})
	}
	for _, s := range p.Struggles {
		out.Struggles = append(out.Struggles, struggleJSON(s))
	}
	for _, a := range p.Recent {
		out.Recent = append(out.Recent, recentJSON{
			ID: a.ID, Subject: a.Subject.String(), Correct: a.Correct, CreatedAt: a.CreatedAt,
		})
	}
	return out
}

func init() {
	profileCmd.Flags().Bool("json", false, "Print the profile as JSON")
}
