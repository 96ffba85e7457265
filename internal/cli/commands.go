package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dmitrijs2005/speaker/internal/app"
	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/services"
	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Invalid("bad id %q", s)
	}
	return id, nil
}

// NewMigrateCommand opens the store, which applies pending migrations, and
// reports the resulting schema version.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				v, err := a.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				out := struct {
					Path          string `json:"path"`
					SchemaVersion int64  `json:"schema_version"`
				}{a.Store().Path(), v}
				return rootOpts.printer(cmd.OutOrStdout()).emit(out, func(w io.Writer) error {
					return row(w, out.Path, "schema", out.SchemaVersion)
				})
			})
		},
	}
}

// NewRegisterCommand creates an account. The password is prompted for.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := getPassword(cmd)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				id, err := a.Accounts.Register(ctx, email, name, string(pw))
				if err != nil {
					return err
				}
				out := struct {
					ID int64 `json:"id"`
				}{id}
				return rootOpts.printer(cmd.OutOrStdout()).emit(out, func(w io.Writer) error {
					return row(w, "account", id)
				})
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// NewVoiceCommand groups voice management.
func NewVoiceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Manage voices",
	}
	cmd.AddCommand(newVoiceAddCommand(rootOpts))
	cmd.AddCommand(newVoiceListCommand(rootOpts))
	cmd.AddCommand(newVoiceRemoveCommand(rootOpts))
	cmd.AddCommand(newEmotionCommand(rootOpts))
	return cmd
}

func newVoiceAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		owner      int64
		name, kind string
		file       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a voice payload for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open payload: %w", err)
				}
				defer f.Close()
				payload = f
			}

			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				v, err := a.Voices.Create(ctx, owner, name, models.VoiceKind(kind), payload)
				if err != nil {
					return err
				}
				return printVoices(rootOpts, cmd, v)
			})
		},
	}
	cmd.Flags().Int64Var(&owner, "owner", 0, "owning account id")
	cmd.Flags().StringVar(&name, "name", "", "voice name")
	cmd.Flags().StringVar(&kind, "kind", string(models.VoiceCustom), "custom, generated or cloned")
	cmd.Flags().StringVar(&file, "file", "-", "payload file, - for stdin")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newVoiceListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		owner       int64
		unpublished bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an account's voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				list := a.Voices.ListByOwner
				if unpublished {
					list = a.Voices.ListUnpublished
				}
				vs, err := list(ctx, owner)
				if err != nil {
					return err
				}
				return printVoices(rootOpts, cmd, vs...)
			})
		},
	}
	cmd.Flags().Int64Var(&owner, "owner", 0, "owning account id")
	cmd.Flags().BoolVar(&unpublished, "unpublished", false, "only voices not yet on the marketplace")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newVoiceRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <voice-id>",
		Short: "Delete a voice and release its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Voices.Remove(ctx, id)
			})
		},
	}
}

type voiceOut struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Handle    string `json:"asset_handle"`
	CreatedAt string `json:"created_at"`
	Published bool   `json:"published"`
}

func toVoiceOut(v *models.VoiceAsset) voiceOut {
	return voiceOut{
		ID:        v.ID,
		OwnerID:   v.OwnerID,
		Name:      v.Name,
		Kind:      string(v.Kind),
		Handle:    v.AssetHandle,
		CreatedAt: v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Published: v.Published,
	}
}

func printVoices(rootOpts *RootOptions, cmd *cobra.Command, vs ...*models.VoiceAsset) error {
	out := make([]voiceOut, 0, len(vs))
	for _, v := range vs {
		out = append(out, toVoiceOut(v))
	}
	return rootOpts.printer(cmd.OutOrStdout()).emit(out, func(w io.Writer) error {
		for _, v := range out {
			if err := row(w, v.ID, v.Name, v.Kind, v.Published, v.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func newEmotionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emotion",
		Short: "Annotate a voice with emotion marks",
	}

	var (
		label      string
		start, end float64
		intensity  int
	)
	add := &cobra.Command{
		Use:   "add <voice-id>",
		Short: "Add an emotion mark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				m, err := a.Emotions.Add(ctx, id, label, start, end, intensity)
				if err != nil {
					return err
				}
				return printMarks(rootOpts, cmd, m)
			})
		},
	}
	add.Flags().StringVar(&label, "label", "", "emotion label")
	add.Flags().Float64Var(&start, "start", 0, "start offset in seconds")
	add.Flags().Float64Var(&end, "end", 0, "end offset in seconds")
	add.Flags().IntVar(&intensity, "intensity", 50, "intensity, 0 to 100")
	_ = add.MarkFlagRequired("label")
	_ = add.MarkFlagRequired("end")

	list := &cobra.Command{
		Use:   "list <voice-id>",
		Short: "List a voice's emotion marks in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ms, err := a.Emotions.ListByVoice(ctx, id)
				if err != nil {
					return err
				}
				return printMarks(rootOpts, cmd, ms...)
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func printMarks(rootOpts *RootOptions, cmd *cobra.Command, ms ...*models.EmotionMark) error {
	type markOut struct {
		ID        int64   `json:"id"`
		VoiceID   int64   `json:"voice_id"`
		Label     string  `json:"label"`
		Start     float64 `json:"start"`
		End       float64 `json:"end"`
		Intensity int     `json:"intensity"`
	}
	out := make([]markOut, 0, len(ms))
	for _, m := range ms {
		out = append(out, markOut{m.ID, m.VoiceID, m.Label, m.StartOffset, m.EndOffset, m.Intensity})
	}
	return rootOpts.printer(cmd.OutOrStdout()).emit(out, func(w io.Writer) error {
		for _, m := range out {
			if err := row(w, m.ID, m.Label, m.Start, m.End, m.Intensity); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewPublishCommand lists a voice on the marketplace.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		seller      int64
		price       float64
		description string
	)

	cmd := &cobra.Command{
		Use:   "publish <voice-id>",
		Short: "Publish a voice on the marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				l, err := a.Marketplace.Publish(ctx, id, seller, price, description)
				if err != nil {
					return err
				}
				return printListings(rootOpts, cmd, &models.ListingWithVoice{Listing: *l})
			})
		},
	}
	cmd.Flags().Int64Var(&seller, "seller", 0, "selling account id, must own the voice")
	cmd.Flags().Float64Var(&price, "price", 0, "price, greater than zero")
	cmd.Flags().StringVar(&description, "description", "", "listing description")
	_ = cmd.MarkFlagRequired("seller")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

// NewListingsCommand prints every marketplace listing with its voice.
func NewListingsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "listings",
		Short: "List the marketplace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ls, err := a.Marketplace.ListAll(ctx)
				if err != nil {
					return err
				}
				return printListings(rootOpts, cmd, ls...)
			})
		},
	}
}

func printListings(rootOpts *RootOptions, cmd *cobra.Command, ls ...*models.ListingWithVoice) error {
	type listingOut struct {
		ID          int64     `json:"id"`
		VoiceID     int64     `json:"voice_id"`
		SellerID    int64     `json:"seller_id"`
		Price       float64   `json:"price"`
		Description string    `json:"description"`
		Voice       *voiceOut `json:"voice"`
	}
	out := make([]listingOut, 0, len(ls))
	for _, l := range ls {
		o := listingOut{
			ID:          l.Listing.ID,
			VoiceID:     l.Listing.VoiceID,
			SellerID:    l.Listing.SellerID,
			Price:       l.Listing.Price,
			Description: l.Listing.Description,
		}
		if l.Voice != nil {
			v := toVoiceOut(l.Voice)
			o.Voice = &v
		}
		out = append(out, o)
	}
	return rootOpts.printer(cmd.OutOrStdout()).emit(out, func(w io.Writer) error {
		for _, l := range out {
			name := "-"
			if l.Voice != nil {
				name = l.Voice.Name
			}
			if err := row(w, l.ID, l.VoiceID, name, strconv.FormatFloat(l.Price, 'f', 2, 64), l.Description); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewPrefsCommand reads and merges account preferences.
func NewPrefsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or update account preferences",
	}

	get := &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show effective preferences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				p, err := a.Preferences.Get(ctx, id)
				if err != nil {
					return err
				}
				return printPrefs(rootOpts, cmd, p)
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <account-id>",
		Short: "Merge a JSON patch read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := services.DecodePatch(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				p, err := a.Preferences.Upsert(ctx, id, patch)
				if err != nil {
					return err
				}
				return printPrefs(rootOpts, cmd, p)
			})
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func printPrefs(rootOpts *RootOptions, cmd *cobra.Command, p models.Preferences) error {
	return rootOpts.printer(cmd.OutOrStdout()).emit(p, func(w io.Writer) error {
		if err := row(w, "theme", p.Theme); err != nil {
			return err
		}
		if err := row(w, "export_quality", p.ExportQuality); err != nil {
			return err
		}
		if err := row(w, "auto_save", p.AutoSave); err != nil {
			return err
		}
		return row(w, "email_notifications", p.EmailNotifications)
	})
}

// NewStatsCommand prints the dashboard counters for an account.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var owner int64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count an account's voices by kind and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				st, err := a.Voices.Stats(ctx, owner)
				if err != nil {
					return err
				}
				return rootOpts.printer(cmd.OutOrStdout()).emit(st, func(w io.Writer) error {
					if err := row(w, "total", st.Total); err != nil {
						return err
					}
					if err := row(w, "published", st.Published); err != nil {
						return err
					}
					for _, k := range models.VoiceKinds() {
						if err := row(w, string(k), st.ByKind[k]); err != nil {
							return err
						}
					}
					for _, d := range st.PerDay {
						if err := row(w, d.Day, d.Count); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().Int64Var(&owner, "owner", 0, "account id")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// NewAuditCommand compares voice records with stored payloads. It fails
// when a dangling or orphaned handle is found.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check that every voice payload exists and is referenced",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				rep, err := a.Voices.AuditAssets(ctx)
				if err != nil {
					return err
				}
				err = rootOpts.printer(cmd.OutOrStdout()).emit(rep, func(w io.Writer) error {
					for _, h := range rep.Dangling {
						if err := row(w, "dangling", h); err != nil {
							return err
						}
					}
					for _, h := range rep.Orphaned {
						if err := row(w, "orphaned", h); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				if !rep.Clean() {
					return fmt.Errorf("audit found %d dangling and %d orphaned payloads", len(rep.Dangling), len(rep.Orphaned))
				}
				return nil
			})
		},
	}
}
