package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "external_id").
		From("roster_players").
		Where(Eq("team_abbreviation", "KC"), IsNull("deleted_at")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, external_id FROM roster_players WHERE team_abbreviation = $1 AND deleted_at IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "KC" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_Expr(t *testing.T) {
	query, args, err := Select("id").
		From("roster_players").
		Where(Eq("active", true), Expr("external_id IS NOT NULL AND id <> ?", int64(10))).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM roster_players WHERE active = $1 AND external_id IS NOT NULL AND id <> $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[1] != int64(10) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("roster_players").
		Columns("external_id", "first_name").
		Values("sd-1", "Patrick").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO roster_players (external_id, first_name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "sd-1" || args[1] != "Patrick" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels(t *testing.T) {
	type row struct {
		ExternalID string `db:"external_id"`
		GameID     string `db:"game_id"`
		Ignored    string `db:"-"`
		hidden     string
	}

	query, args, err := InsertModels("player_game_stats", []row{
		{ExternalID: "sd-1", GameID: "g1", Ignored: "x", hidden: "y"},
		{ExternalID: "sd-2", GameID: "g1"},
	}, "ON CONFLICT DO NOTHING")
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO player_game_stats (external_id, game_id) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "sd-2" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModels("player_game_stats", []row{}, ""); err == nil {
		t.Fatalf("expected error for empty slice")
	}
	if _, _, err := InsertModels("player_game_stats", row{}, ""); err == nil {
		t.Fatalf("expected error for non-slice input")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("roster_players").
		Set("external_id", "sd-1").
		SetExpr("team_abbreviation", "COALESCE(NULLIF(?, ''), team_abbreviation)", "KC").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(10))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE roster_players SET external_id = $1, team_abbreviation = COALESCE(NULLIF($2, ''), team_abbreviation), updated_at = NOW() WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "sd-1" || args[1] != "KC" || args[2] != int64(10) {
		t.Fatalf("unexpected args: %+v", args)
	}
}
