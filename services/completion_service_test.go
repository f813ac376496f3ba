package services

import (
	"errors"
	"fmt"
	"testing"

	"voting-bracket-api/models"
	"voting-bracket-api/testhelpers"

	"gorm.io/gorm"
)

func bufferVote(t *testing.T, db *gorm.DB, sessionID, winnerID, loserID uint, order int, comment *string) {
	t.Helper()
	vote := models.SessionVote{
		SessionID: sessionID,
		WinnerID:  winnerID,
		LoserID:   loserID,
		VoteOrder: order,
		Comment:   comment,
	}
	if err := db.Create(&vote).Error; err != nil {
		t.Fatalf("failed to buffer vote: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestCompleteTournamentReplaysInOrderWithFinaleBonus(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	sessions := NewSessionService(db)
	completion := NewCompletionService(db)
	testhelpers.SeedUser(t, db, 1001)
	a := testhelpers.SeedCandidate(t, db, "a", 1200)
	b := testhelpers.SeedCandidate(t, db, "b", 1200)

	session, _, err := sessions.GetOrCreateSession(1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bufferVote(t, db, session.ID, a.ID, b.ID, 0, nil)
	bufferVote(t, db, session.ID, b.ID, a.ID, 1, nil)

	if err := completion.CompleteTournament(session.ID, 1001, nil); err != nil {
		t.Fatalf("completion failed: %v", err)
	}

	// First vote at K=32 moves 1200/1200 to 1216/1184. The final vote at
	// K=60 then moves 1184/1216 to 1217/1183.
	var candA, candB models.Candidate
	db.First(&candA, a.ID)
	db.First(&candB, b.ID)
	if candA.EloRating != 1183 {
		t.Errorf("candidate a rating = %d, want 1183", candA.EloRating)
	}
	if candB.EloRating != 1217 {
		t.Errorf("candidate b rating = %d, want 1217", candB.EloRating)
	}
	if candA.Wins != 1 || candA.Matches != 2 {
		t.Errorf("candidate a wins/matches = %d/%d, want 1/2", candA.Wins, candA.Matches)
	}
	if candB.Wins != 1 || candB.Matches != 2 {
		t.Errorf("candidate b wins/matches = %d/%d, want 1/2", candB.Wins, candB.Matches)
	}

	var ledger []models.Vote
	db.Order("id ASC").Find(&ledger)
	if len(ledger) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(ledger))
	}
	if ledger[0].WinnerID != a.ID || ledger[1].WinnerID != b.ID {
		t.Errorf("ledger replayed out of order: winners %d, %d", ledger[0].WinnerID, ledger[1].WinnerID)
	}

	var reloaded models.TournamentSession
	db.First(&reloaded, session.ID)
	if !reloaded.IsCompleted {
		t.Error("session should be marked completed")
	}
}

func TestCompleteTournamentOrdersByVoteOrderThenID(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	sessions := NewSessionService(db)
	completion := NewCompletionService(db)
	testhelpers.SeedUser(t, db, 1001)
	a := testhelpers.SeedCandidate(t, db, "a", 1200)
	b := testhelpers.SeedCandidate(t, db, "b", 1200)
	c := testhelpers.SeedCandidate(t, db, "c", 1200)

	session, _, err := sessions.GetOrCreateSession(1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Buffered out of order, with a duplicated ordinal resolved by insertion
	// order.
	bufferVote(t, db, session.ID, c.ID, a.ID, 2, nil)
	bufferVote(t, db, session.ID, a.ID, b.ID, 0, nil)
	bufferVote(t, db, session.ID, b.ID, c.ID, 2, nil)

	if err := completion.CompleteTournament(session.ID, 1001, nil); err != nil {
		t.Fatalf("completion failed: %v", err)
	}

	var ledger []models.Vote
	db.Order("id ASC").Find(&ledger)
	if len(ledger) != 3 {
		t.Fatalf("expected 3 ledger rows, got %d", len(ledger))
	}
	wantWinners := []uint{a.ID, c.ID, b.ID}
	for i, row := range ledger {
		if row.WinnerID != wantWinners[i] {
			t.Errorf("ledger[%d].WinnerID = %d, want %d", i, row.WinnerID, wantWinners[i])
		}
	}
}

func TestCompleteTournamentEmptySession(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	sessions := NewSessionService(db)
	completion := NewCompletionService(db)
	testhelpers.SeedUser(t, db, 1001)

	session, _, err := sessions.GetOrCreateSession(1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = completion.CompleteTournament(session.ID, 1001, nil)
	if !errors.Is(err, ErrEmptySession) {
		t.Fatalf("expected ErrEmptySession, got %v", err)
	}

	var reloaded models.TournamentSession
	db.First(&reloaded, session.ID)
	if reloaded.IsCompleted {
		t.Error("empty session must stay non-completed")
	}
}

func TestCompleteTournamentUnknownSession(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	completion := NewCompletionService(db)

	err := completion.CompleteTournament(404, 1001, nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCompleteTournamentTwiceCommitsOnce(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	sessions := NewSessionService(db)
	completion := NewCompletionService(db)
	testhelpers.SeedUser(t, db, 1001)
	a := testhelpers.SeedCandidate(t, db, "a", 1200)
	b := testhelpers.SeedCandidate(t, db, "b", 1200)

	session, _, err := sessions.GetOrCreateSession(1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bufferVote(t, db, session.ID, a.ID, b.ID, 0, nil)

	if err := completion.CompleteTournament(session.ID, 1001, nil); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	err = completion.CompleteTournament(session.ID, 1001, nil)
	if !errors.Is(err, ErrTournamentCompleted) {
		t.Fatalf("expected ErrTournamentCompleted, got %v", err)
	}

	var ledgerCount int64
	db.Model(&models.Vote{}).Count(&ledgerCount)
	if ledgerCount != 1 {
		t.Errorf("expected exactly 1 ledger row after double completion, got %d", ledgerCount)
	}
	var candA models.Candidate
	db.First(&candA, a.ID)
	if candA.Matches != 1 {
		t.Errorf("ratings applied more than once: matches = %d", candA.Matches)
	}
}

func TestCompleteTournamentRollsBackOnMidReplayFailure(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	sessions := NewSessionService(db)
	completion := NewCompletionService(db)
	testhelpers.SeedUser(t, db, 1001)
	a := testhelpers.SeedCandidate(t, db, "a", 1200)
	b := testhelpers.SeedCandidate(t, db, "b", 1200)
	c := testhelpers.SeedCandidate(t, db, "c", 1200)

	session, _, err := sessions.GetOrCreateSession(1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bufferVote(t, db, session.ID, a.ID, b.ID, 0, nil)
	bufferVote(t, db, session.ID, b.ID, c.ID, 1, nil)
	bufferVote(t, db, session.ID, c.ID, a.ID, 2, nil)

	// Fail the second ledger insert to leave the transaction half replayed.
	ledgerInserts := 0
	err = db.Callback().Create().Before("gorm:create").Register("fail_second_ledger_insert", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.Vote); !ok {
			return
		}
		ledgerInserts++
		if ledgerInserts == 2 {
			tx.AddError(fmt.Errorf("injected insert failure"))
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}
	defer db.Callback().Create().Remove("fail_second_ledger_insert")

	err = completion.CompleteTournament(session.ID, 1001, nil)
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}

	var ledgerCount int64
	db.Model(&models.Vote{}).Count(&ledgerCount)
	if ledgerCount != 0 {
		t.Errorf("expected full rollback of ledger rows, found %d", ledgerCount)
	}
	for _, id := range []uint{a.ID, b.ID, c.ID} {
		var cand models.Candidate
		db.First(&cand, id)
		if cand.EloRating != 1200 || cand.Matches != 0 {
			t.Errorf("candidate %d changed despite rollback: elo=%d matches=%d", id, cand.EloRating, cand.Matches)
		}
	}
	var reloaded models.TournamentSession
	db.First(&reloaded, session.ID)
	if reloaded.IsCompleted {
		t.Error("session must stay non-completed after a failed replay")
	}
	votes, _ := sessions.CountSessionVotes(session.ID)
	if votes != 3 {
		t.Errorf("buffered votes must survive a failed completion, found %d", votes)
	}
}

func TestCompleteTournamentRollsBackOnLateFailure(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	sessions := NewSessionService(db)
	completion := NewCompletionService(db)
	testhelpers.SeedUser(t, db, 1001)
	a := testhelpers.SeedCandidate(t, db, "a", 1200)
	b := testhelpers.SeedCandidate(t, db, "b", 1200)

	session, _, err := sessions.GetOrCreateSession(1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bufferVote(t, db, session.ID, a.ID, b.ID, 0, nil)

	// Breaking the users table makes the last_vote_at update fail after the
	// whole replay already ran inside the transaction.
	testhelpers.DropTable(t, db, &models.User{})

	err = completion.CompleteTournament(session.ID, 1001, nil)
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}

	var ledgerCount int64
	db.Model(&models.Vote{}).Count(&ledgerCount)
	if ledgerCount != 0 {
		t.Errorf("expected rollback of ledger rows, found %d", ledgerCount)
	}
	var candA models.Candidate
	db.First(&candA, a.ID)
	if candA.EloRating != 1200 {
		t.Errorf("rating changed despite rollback: %d", candA.EloRating)
	}
	var reloaded models.TournamentSession
	db.First(&reloaded, session.ID)
	if reloaded.IsCompleted {
		t.Error("session must stay non-completed after a failed completion")
	}
}

func TestCompleteTournamentFinalCommentFallback(t *testing.T) {
	cases := []struct {
		name         string
		lastComment  *string
		finalComment *string
		wantLast     *string
	}{
		{"final comment fills empty last vote", nil, strPtr("great finale"), strPtr("great finale")},
		{"own comment wins over final comment", strPtr("mine"), strPtr("ignored"), strPtr("mine")},
		{"blank comment treated as empty", strPtr(""), strPtr("great finale"), strPtr("great finale")},
		{"no comments at all", nil, nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := testhelpers.SetupTestDB(t)
			sessions := NewSessionService(db)
			completion := NewCompletionService(db)
			testhelpers.SeedUser(t, db, 1001)
			a := testhelpers.SeedCandidate(t, db, "a", 1200)
			b := testhelpers.SeedCandidate(t, db, "b", 1200)

			session, _, err := sessions.GetOrCreateSession(1001)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			bufferVote(t, db, session.ID, a.ID, b.ID, 0, nil)
			bufferVote(t, db, session.ID, b.ID, a.ID, 1, tc.lastComment)

			if err := completion.CompleteTournament(session.ID, 1001, tc.finalComment); err != nil {
				t.Fatalf("completion failed: %v", err)
			}

			var ledger []models.Vote
			db.Order("id ASC").Find(&ledger)
			if len(ledger) != 2 {
				t.Fatalf("expected 2 ledger rows, got %d", len(ledger))
			}

			// The final comment never leaks onto earlier votes.
			if tc.finalComment != nil && ledger[0].Comment != nil && *ledger[0].Comment == *tc.finalComment {
				t.Error("final comment applied to a non-final vote")
			}

			got := ledger[1].Comment
			switch {
			case tc.wantLast == nil:
				if got != nil && *got != "" {
					t.Errorf("expected no comment on final vote, got %q", *got)
				}
			case got == nil:
				t.Errorf("expected comment %q on final vote, got nil", *tc.wantLast)
			case *got != *tc.wantLast:
				t.Errorf("final vote comment = %q, want %q", *got, *tc.wantLast)
			}
		})
	}
}
