package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/lifeready/ledger"
	"github.com/lifeready/ledger/bundle"
	"github.com/lifeready/ledger/config"
	"github.com/lifeready/ledger/policy"
	"github.com/lifeready/ledger/store/sqlite"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()
	cfg, err := config.Load("")
	must(err)

	logger, err := cfg.NewLogger()
	must(err)
	defer logger.Sync()

	st, err := sqlite.Open(":memory:")
	must(err)
	defer st.Close()

	svc := ledger.New(st, ledger.WithLogger(logger))

	// The writing service would build this context from verified claims;
	// here we stand in for it.
	reqCtx := policy.RequestContext{
		PrincipalID:  "0b6e7c1e-9c87-4df1-9b7e-2f4f6a1f9d10",
		Roles:        []policy.Role{policy.RolePrincipal},
		AllowedTiers: []ledger.Tier{ledger.TierGreen, ledger.TierAmber},
		Scopes:       []string{policy.AccessLimitedWrite.Scope()},
	}
	must(policy.RequireRole(reqCtx, policy.RolePrincipal, policy.RoleProxy))
	must(policy.RequireScope(reqCtx, "write:limited"))

	caseID := "3f1a7c52-4a0e-4e0a-8b63-7d9d2c9f2a11"
	appends := []ledger.AppendInput{
		{
			ActorPrincipalID: reqCtx.PrincipalID,
			Action:           "case.create",
			Tier:             ledger.TierGreen,
			CaseID:           &caseID,
			Payload:          json.RawMessage(`{"case_type":"emergency_pack"}`),
		},
		{
			ActorPrincipalID: reqCtx.PrincipalID,
			Action:           "document.upload",
			Tier:             ledger.TierAmber,
			CaseID:           &caseID,
			Payload:          json.RawMessage(`{"slot_name":"will_pdf","bytes":2048}`),
		},
		{
			ActorPrincipalID: reqCtx.PrincipalID,
			Action:           "case.export",
			Tier:             ledger.TierGreen,
			CaseID:           &caseID,
			Payload:          json.RawMessage(`{"ok":true}`),
		},
	}
	for _, in := range appends {
		must(policy.RequireTier(reqCtx, in.Tier))
		ev, err := svc.Append(ctx, in)
		must(err)
		fmt.Printf("- %s %s prev=%s hash=%s\n", ev.CreatedAt, ev.Event.Action, short(ev.PrevHash), short(ev.EventHash))
	}

	head, err := svc.VerifyStored(ctx)
	must(err)
	fmt.Println("Stored chain OK. Head hash:", head)

	dir := filepath.Join(cfg.ExportDir, "example-bundle")
	ex := bundle.NewExporter(svc, logger)
	manifest, err := ex.Export(ctx, dir, bundle.ExportInput{
		CaseID:   caseID,
		CaseType: "emergency_pack",
		Documents: []bundle.Document{{
			SlotName:     "will_pdf",
			DocumentID:   "8c3a2b4d-6e1f-4a5b-9c7d-0e2f4a6b8c1d",
			DocumentType: "will",
			Title:        "Last will and testament",
			Content:      []byte("%PDF-1.4 example"),
		}},
	})
	must(err)
	fmt.Println("Exported bundle to", dir)
	fmt.Println("Manifest head:", short(manifest.AuditHeadHash), "events sha:", short(manifest.AuditEventsSHA256))

	must(bundle.VerifyBundle(dir))
	fmt.Println("Bundle verification OK")
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func short(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
