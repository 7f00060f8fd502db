package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ale3590/fares/internal/composer"
	"github.com/ale3590/fares/internal/config"
	"github.com/ale3590/fares/internal/money"
	"github.com/ale3590/fares/internal/screen"
)

// orderFile is the YAML form of a draft.
type orderFile struct {
	Screen       string `yaml:"screen"`
	Counterparty string `yaml:"counterparty"`
	WalkIn       struct {
		TaxID string `yaml:"nit"`
		Name  string `yaml:"nombre"`
	} `yaml:"walk_in"`
	Lines []orderLine `yaml:"lines"`
}

type orderLine struct {
	Item     string   `yaml:"item"`
	Quantity int      `yaml:"cantidad"`
	Discount float64  `yaml:"descuento"`
	Price    *float64 `yaml:"precio"`
}

func readOrder(path string) (orderFile, error) {
	var o orderFile
	data, err := os.ReadFile(path)
	if err != nil {
		return o, err
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parse %s: %w", path, err)
	}
	if o.Screen == "" {
		o.Screen = string(screen.KindInvoicing)
	}
	return o, nil
}

// fill replays the order through c the way a user would type it. Stock
// clamps are reported on warn and do not stop the order.
func (o orderFile) fill(c *composer.Composer, kind screen.Kind, warn io.Writer) error {
	for n, l := range o.Lines {
		i := c.AddLine()
		if _, err := c.SearchLine(i, l.Item); err != nil {
			return err
		}
		if err := c.AcceptLine(i); err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}
		if l.Quantity != 0 {
			if _, err := c.SetQuantity(i, l.Quantity); err != nil {
				if !composer.Clamped(err) {
					return fmt.Errorf("line %d: %w", n+1, err)
				}
				fmt.Fprintf(warn, "warning: line %d: %v\n", n+1, err)
			}
		}
		if l.Discount != 0 {
			if _, err := c.SetDiscount(i, l.Discount); err != nil {
				return fmt.Errorf("line %d: %w", n+1, err)
			}
		}
		if l.Price != nil {
			price, err := money.FromFloat(*l.Price)
			if err != nil {
				return fmt.Errorf("line %d: %w", n+1, err)
			}
			if _, err := c.SetPrice(i, price); err != nil {
				return fmt.Errorf("line %d: %w", n+1, err)
			}
		}
	}
	if kind != screen.KindPOS && o.Counterparty != "" {
		c.SearchCounterparty(o.Counterparty)
		if err := c.AcceptCounterparty(); err != nil {
			return err
		}
	}
	return nil
}

func newComposeCmd(cfg *config.Config, g *globalFlags) *cobra.Command {
	var file string
	var submit bool
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Build a draft from a YAML order and optionally submit it",
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := readOrder(file)
			if err != nil {
				return err
			}
			kind, err := screen.ParseKind(order.Screen)
			if err != nil {
				return err
			}
			profiles, err := config.LoadProfiles(cfg.App.ProfilesFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, err := g.login(ctx, cfg)
			if err != nil {
				return err
			}
			gw := client.SalesGateway()
			if !kind.Sales() {
				gw = client.PurchasesGateway()
			}
			s := screen.New(profiles[kind], gw, screen.WithPartyFinder(client), screen.WithLocation(cfg.App.Location()))
			s.Load(ctx)
			if err := firstNotice(s); err != nil {
				return err
			}
			if kind == screen.KindPOS {
				s.SetWalkIn(order.WalkIn.TaxID, order.WalkIn.Name)
			}
			if err := s.Apply(func(c *composer.Composer) error { return order.fill(c, kind, cmd.ErrOrStderr()) }); err != nil {
				return noticeErr(s, err)
			}
			printDraft(cmd.OutOrStdout(), s.View("en"))
			if !submit {
				return nil
			}
			rec, err := s.Submit(ctx)
			if err != nil {
				return noticeErr(s, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted %s total %s\n", rec.Number, rec.Total.Format(profiles[kind].Currency))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML order file")
	cmd.Flags().BoolVar(&submit, "submit", false, "Submit the draft to the ERP")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// noticeErr prefers the user-facing notice the screen recorded for err.
func noticeErr(s *screen.Screen, err error) error {
	if ns := s.View("en").Notices; len(ns) > 0 && ns[0].Message != "" {
		return errors.New(ns[0].Message)
	}
	return err
}

// firstNotice turns a load failure into an error.
func firstNotice(s *screen.Screen) error {
	for _, n := range s.View("en").Notices {
		if n.Level == screen.LevelError {
			return errors.New(n.Message)
		}
	}
	return nil
}

func printDraft(w io.Writer, v screen.View) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tITEM\tQTY\tDISC\tPRICE\tSUBTOTAL")
	for _, l := range v.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%g\t%s\t%s\n", l.Index+1, l.Label, l.Quantity, l.Discount, l.Price, l.Subtotal)
	}
	_ = tw.Flush()
	party := "-"
	switch {
	case v.WalkIn != nil:
		party = v.WalkIn.TaxID + " " + v.WalkIn.Name
	case v.Counterparty != nil:
		party = v.Counterparty.Name
	}
	fmt.Fprintf(w, "counterparty: %s\ntotal: %s\n", party, v.TotalText)
}
