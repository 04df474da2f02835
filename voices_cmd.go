package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/internal/news"
	"github.com/dgnsrekt/newsreel/narration"
	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:   "voices [LANGUAGE]",
	Short: "List the voices of the speech engine",
	Long: paragraph(fmt.Sprintf("\nList the voices the speech engine offers and %s for a language. LANGUAGE is a news language code or a tag such as en-GB.",
		keyword("the one newsreel would pick"))),
	Example: paragraph("newsreel voices\nnewsreel voices fr --engine espeak"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		tag := news.NarrationTag(language)
		if len(args) > 0 {
			tag = news.NarrationTag(args[0])
		}

		cfg, err := narrationConfig()
		if err != nil {
			return err
		}
		engine, err := newEngine(log.Default())
		if err != nil {
			return err
		}
		defer engine.CancelAll()

		catalog := waitForVoices(engine, max(cfg.CatalogTimeout, time.Second))
		if len(catalog) == 0 {
			fmt.Printf("%s has no voices, its default voice will be used.\n", engine.Name())
			return nil
		}

		chosen, ok := narration.SelectVoice(catalog, tag)

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
			Headers("VOICE", "LANGUAGE", "")
		for _, v := range catalog {
			var mark string
			switch {
			case ok && v == chosen:
				mark = keyword(" selected ")
			case v.Default:
				mark = faint("default")
			}
			t.Row(v.Name, v.Lang, mark)
		}
		fmt.Println(t)

		if ok {
			fmt.Printf("%s reads %s with %s.\n", engine.Name(), tag, keyword(" "+chosen.Name+" "))
		} else {
			fmt.Printf("%s has no %s voice, its default voice will be used.\n", engine.Name(), tag)
		}
		return nil
	},
}

// waitForVoices returns the engine catalog, waiting up to d for engines that
// load it in the background.
func waitForVoices(engine narration.Engine, d time.Duration) []narration.VoiceProfile {
	changed := make(chan struct{}, 1)
	engine.OnVoicesChanged(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	if voices := engine.Voices(); len(voices) > 0 {
		return voices
	}
	select {
	case <-changed:
	case <-time.After(d):
	}
	return engine.Voices()
}
