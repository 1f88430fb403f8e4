package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	httpapi "github.com/tbourn/go-qa-backend/internal/http"
	"github.com/tbourn/go-qa-backend/internal/http/middleware"
	"github.com/tbourn/go-qa-backend/internal/services"
)

func newAskCmd(envFile *string) *cobra.Command {
	var (
		stream   bool
		user     string
		parentID int64
		noRecent bool
	)
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question through the full pipeline and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			qs := httpapi.NewServices(httpapi.Deps{DB: a.db, Cache: a.cache, Provider: a.provider}, cfg).Questions
			req := services.AskRequest{
				UserID:       user,
				Question:     strings.Join(args, " "),
				RecordRecent: !noRecent && parentID == 0,
			}
			if parentID > 0 {
				req.ParentID = &parentID
			}

			out := cmd.OutOrStdout()
			if !stream {
				res, err := qs.Do(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, res.Answer)
				printMeta(out, res.QuestionID, res.IsInDomain, res.Cached)
				return nil
			}
			return qs.Stream(ctx, req, func(ev services.StreamEvent) error {
				switch ev.Type {
				case services.EventCached:
					fmt.Fprintln(out, ev.Answer)
					printMeta(out, ev.QuestionID, ev.IsInDomain, true)
				case services.EventContent:
					fmt.Fprint(out, ev.Text)
				case services.EventDone:
					fmt.Fprintln(out)
					printMeta(out, ev.QuestionID, ev.IsInDomain, false)
				case services.EventError:
					fmt.Fprintln(out)
					fmt.Fprintln(out, "error:", ev.Message)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "print fragments as they arrive")
	cmd.Flags().StringVar(&user, "user", middleware.DefaultUserID, "user id the exchange is stored under")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "ask as a follow-up of this question id")
	cmd.Flags().BoolVar(&noRecent, "no-recent", false, "do not record the question in the recent list")
	return cmd
}

func printMeta(w io.Writer, questionID int64, inDomain, cached bool) {
	fmt.Fprintf(w, "[question_id=%d in_domain=%t cached=%t]\n", questionID, inDomain, cached)
}
