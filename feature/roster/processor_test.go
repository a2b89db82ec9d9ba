package roster

import (
	"context"
	"fmt"
	"testing"

	"attendance-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type testSheet struct {
	name string
	rows [][]any
}

// buildXLSX renders sheets into an in-memory workbook.
func buildXLSX(t *testing.T, sheets ...testSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestProcessor_ProcessFile(t *testing.T) {
	data := buildXLSX(t,
		testSheet{name: "Day 1", rows: [][]any{
			{"Roll No", "Name", "Email"},
			{1, "Alice Smith", "alice@x.com"},
			{2, "Bob Lee", "bob@y.com"},
		}},
		testSheet{name: "Day 2", rows: [][]any{
			{"Candidate Name", "Department"},
			{"Carol King", "EEE"},
		}},
		testSheet{name: "Notes", rows: [][]any{
			{"Remarks"},
			{"bring ids"},
		}},
	)
	input := MemoryInput{Filename: "week1.xlsx", Data: data}
	p := NewProcessor(zap.NewNop())
	state := reconcile.NewState()

	stats, err := p.ProcessFile(context.Background(), input, reconcile.PassEmailRequired, state)
	require.NoError(t, err)
	assert.Equal(t, reconcile.FileStats{TotalSheets: 3, SheetsProcessed: 1, RowsProcessed: 2}, stats)

	stats, err = p.ProcessFile(context.Background(), input, reconcile.PassNameOnly, state)
	require.NoError(t, err)
	assert.Equal(t, reconcile.FileStats{TotalSheets: 3, SheetsProcessed: 1, RowsProcessed: 1}, stats)

	_, ok := state.Identities.Get("carol.king@generated.local")
	assert.True(t, ok)
	assert.Equal(t, 3, state.Identities.Len())
}

func TestProcessor_CorruptFile(t *testing.T) {
	p := NewProcessor(zap.NewNop())
	input := MemoryInput{Filename: "broken.xlsx", Data: []byte("this is not a workbook")}

	_, err := p.ProcessFile(context.Background(), input, reconcile.PassEmailRequired, reconcile.NewState())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.xlsx")
}

func TestProcessor_Cancelled(t *testing.T) {
	data := buildXLSX(t, testSheet{name: "Day 1", rows: [][]any{{"Name", "Email"}, {"Alice Smith", "alice@x.com"}}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(zap.NewNop())
	_, err := p.ProcessFile(ctx, MemoryInput{Filename: "a.xlsx", Data: data}, reconcile.PassEmailRequired, reconcile.NewState())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Reconcile(t *testing.T) {
	emails := buildXLSX(t, testSheet{name: "Drive", rows: [][]any{
		{"Name", "Email"},
		{"Bob Lee", "bob@y.com"},
		{"Alice Smith", "alice@x.com"},
	}})
	moreEmails := buildXLSX(t, testSheet{name: "Drive", rows: [][]any{
		{"Full Name", "Contact"},
		{"Alice S.", "ALICE@x.com"},
		{"Dan Brown", "dan@z.com"},
	}})
	names := buildXLSX(t, testSheet{name: "Interview", rows: [][]any{
		{"Sr.No", "Student Name", "Reporting Time"},
		{1, "Bob Lee", "10:00"},
		{2, "Eve Adams", "10:30"},
		{3, "123", "11:00"},
		{4, "bob lee", "11:30"},
	}})

	inputs := []reconcile.Input{
		MemoryInput{Filename: "names.xlsx", Data: names},
		MemoryInput{Filename: "emails.xlsx", Data: emails},
		MemoryInput{Filename: "more.xlsx", Data: moreEmails},
		MemoryInput{Filename: "broken.xlsx", Data: []byte("nope")},
	}

	for _, workers := range []int{1, 3, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			svc := NewService(nil, defaultStorageConfig(), reconcile.Config{Workers: workers}, nil, zap.NewNop())

			var passes []reconcile.Pass
			svc.OnPhase(func(r reconcile.PhaseReport) { passes = append(passes, r.Pass) })

			res, err := svc.Reconcile(context.Background(), inputs)
			require.NoError(t, err)
			assert.Equal(t, []reconcile.Pass{reconcile.PassEmailRequired, reconcile.PassNameOnly}, passes)

			got := make(map[string]int)
			for _, e := range res.Entries {
				got[e.Email] = e.Count
			}
			assert.Equal(t, map[string]int{
				"alice@x.com":               2,
				"bob@y.com":                 2,
				"dan@z.com":                 1,
				"eve.adams@generated.local": 1,
			}, got)

			assert.Equal(t, 1, res.Entries[0].Rank)
			assert.Equal(t, "alice@x.com", res.Entries[0].Email)
			assert.Equal(t, "bob@y.com", res.Entries[1].Email)

			assert.Equal(t, 4, res.Summary.Files)
			assert.Equal(t, 1, res.Summary.Failures)
			assert.Equal(t, 6, res.Summary.RowsProcessed)
			assert.Equal(t, 4, res.Summary.Identities)
		})
	}
}
