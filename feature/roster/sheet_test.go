package roster

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/core/workbook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(rows ...[]string) *workbook.Grid {
	return workbook.NewGrid("Sheet1", rows)
}

func TestReconcileSheet_PassGating(t *testing.T) {
	emailSheet := grid([]string{"Name", "Email"}, []string{"Alice Smith", "alice@x.com"})
	nameSheet := grid([]string{"Name", "Roll No"}, []string{"Alice Smith", "7"})
	emailOnly := grid([]string{"Email"}, []string{"alice@x.com"})

	tests := []struct {
		name  string
		sheet workbook.Sheet
		pass  reconcile.Pass
		want  int
	}{
		{"Email sheet in email pass", emailSheet, reconcile.PassEmailRequired, 1},
		{"Email sheet in name pass", emailSheet, reconcile.PassNameOnly, 0},
		{"Name sheet in email pass", nameSheet, reconcile.PassEmailRequired, 0},
		{"Name sheet in name pass", nameSheet, reconcile.PassNameOnly, 1},
		{"Email-only sheet has no names", emailOnly, reconcile.PassEmailRequired, 0},
		{"Email-only sheet in name pass", emailOnly, reconcile.PassNameOnly, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := reconcile.NewState()
			assert.Equal(t, tt.want, ReconcileSheet(context.Background(), tt.sheet, tt.pass, state))
			assert.Equal(t, tt.want, state.Identities.Len())
		})
	}
}

func TestReconcileSheet_SameEmailAcrossSheets(t *testing.T) {
	state := reconcile.NewState()
	ctx := context.Background()

	first := grid([]string{"Name", "Email"}, []string{"Alice Smith", "alice@x.com"})
	second := grid([]string{"Name", "Email"}, []string{"Alice S.", "ALICE@x.com "})

	assert.Equal(t, 1, ReconcileSheet(ctx, first, reconcile.PassEmailRequired, state))
	assert.Equal(t, 1, ReconcileSheet(ctx, second, reconcile.PassEmailRequired, state))

	rec, ok := state.Identities.Get("alice@x.com")
	require.True(t, ok)
	assert.Equal(t, 2, rec.Count)
	assert.Contains(t, []string{"Alice Smith", "Alice S."}, rec.Name)
	assert.Equal(t, 1, state.Identities.Len())
}

func TestReconcileSheet_NameResolvesThroughBinding(t *testing.T) {
	state := reconcile.NewState()
	ctx := context.Background()

	emails := grid([]string{"Name", "Email"}, []string{"Bob Lee", "bob@y.com"})
	names := grid([]string{"Student Name", "Branch"}, []string{"Bob Lee", "CSE"})

	ReconcileSheet(ctx, emails, reconcile.PassEmailRequired, state)
	ReconcileSheet(ctx, names, reconcile.PassNameOnly, state)

	rec, ok := state.Identities.Get("bob@y.com")
	require.True(t, ok)
	assert.Equal(t, 2, rec.Count)
	assert.Equal(t, 1, state.Identities.Len())
}

func TestReconcileSheet_UnknownNameIsSynthesized(t *testing.T) {
	state := reconcile.NewState()
	ctx := context.Background()

	first := grid([]string{"Name"}, []string{"Dave Jones"})
	second := grid([]string{"Full Name"}, []string{"dave  JONES"})

	ReconcileSheet(ctx, first, reconcile.PassNameOnly, state)
	ReconcileSheet(ctx, second, reconcile.PassNameOnly, state)

	rec, ok := state.Identities.Get("dave.jones@generated.local")
	require.True(t, ok)
	assert.Equal(t, 2, rec.Count)

	bound, ok := state.Names.Lookup("davejones")
	require.True(t, ok)
	assert.Equal(t, "dave.jones@generated.local", bound)
}

func TestReconcileSheet_FirstBindingWins(t *testing.T) {
	state := reconcile.NewState()
	ctx := context.Background()

	first := grid([]string{"Name", "Email"}, []string{"Carol King", "carol@a.com"})
	second := grid([]string{"Name", "Email"}, []string{"Carol King", "carol@b.com"})
	names := grid([]string{"Name"}, []string{"Carol King"})

	ReconcileSheet(ctx, first, reconcile.PassEmailRequired, state)
	ReconcileSheet(ctx, second, reconcile.PassEmailRequired, state)
	ReconcileSheet(ctx, names, reconcile.PassNameOnly, state)

	a, _ := state.Identities.Get("carol@a.com")
	b, _ := state.Identities.Get("carol@b.com")
	assert.Equal(t, 2, a.Count)
	assert.Equal(t, 1, b.Count)
	_, synthesized := state.Identities.Get("carol.king@generated.local")
	assert.False(t, synthesized)
}

func TestReconcileSheet_DuplicateRowsCountOnce(t *testing.T) {
	state := reconcile.NewState()

	sheet := grid(
		[]string{"Name", "Email"},
		[]string{"Alice Smith", "alice@x.com"},
		[]string{"Alice Smith", "alice@x.com"},
		[]string{"Alice S.", "Alice@X.com"},
	)

	assert.Equal(t, 1, ReconcileSheet(context.Background(), sheet, reconcile.PassEmailRequired, state))
	rec, _ := state.Identities.Get("alice@x.com")
	assert.Equal(t, 1, rec.Count)
	assert.Equal(t, "Alice Smith", rec.Name)
}

func TestReconcileSheet_RowFilters(t *testing.T) {
	state := reconcile.NewState()

	sheet := grid(
		[]string{"S.No", "Name", "Email"},
		[]string{"1", "123", "num@x.com"},
		[]string{"2", "Al", "al@x.com"},
		[]string{"3", "", "blank@x.com"},
		[]string{"4", "5"},
		[]string{},
		[]string{"5", "Eve Adams", "not-an-email"},
		[]string{"6", "Eve Adams", ""},
		[]string{"7", " Zoë ", "zoe@x.com"},
		[]string{"8", "Frank Ocean", " FRANK@X.COM "},
	)

	assert.Equal(t, 2, ReconcileSheet(context.Background(), sheet, reconcile.PassEmailRequired, state))
	assert.Equal(t, 2, state.Identities.Len())

	zoe, ok := state.Identities.Get("zoe@x.com")
	require.True(t, ok)
	assert.Equal(t, "Zoë", zoe.Name)
	_, ok = state.Identities.Get("frank@x.com")
	assert.True(t, ok)
}

func TestReconcileSheet_NumericNameSkippedInBothPasses(t *testing.T) {
	for _, pass := range []reconcile.Pass{reconcile.PassEmailRequired, reconcile.PassNameOnly} {
		t.Run(pass.String(), func(t *testing.T) {
			state := reconcile.NewState()
			header := []string{"Name"}
			if pass == reconcile.PassEmailRequired {
				header = append(header, "Email")
			}
			sheet := grid(header, []string{"123", "n@x.com"})

			assert.Zero(t, ReconcileSheet(context.Background(), sheet, pass, state))
			assert.Zero(t, state.Identities.Len())
			assert.Zero(t, state.Names.Len())
		})
	}
}

func TestReconcileSheet_NoSchema(t *testing.T) {
	state := reconcile.NewState()
	sheet := grid([]string{"Sr.No", "Remarks"}, []string{"1", "late"}, []string{"2", "on leave"})

	for _, pass := range []reconcile.Pass{reconcile.PassEmailRequired, reconcile.PassNameOnly} {
		assert.Zero(t, ReconcileSheet(context.Background(), sheet, pass, state))
	}
	assert.Zero(t, state.Identities.Len())
}

func TestReconcileSheet_NameWithoutLetters(t *testing.T) {
	state := reconcile.NewState()
	sheet := grid([]string{"Name"}, []string{"李小龙"})

	assert.Equal(t, 1, ReconcileSheet(context.Background(), sheet, reconcile.PassNameOnly, state))
	_, ok := state.Identities.Get("unknown@generated.local")
	assert.True(t, ok)

	email, ok := state.Names.Lookup("")
	require.True(t, ok)
	assert.Equal(t, "unknown@generated.local", email)
}

func TestReconcileSheet_NameWithoutLettersAcrossPasses(t *testing.T) {
	state := reconcile.NewState()
	ctx := context.Background()

	withEmail := grid([]string{"Name", "Email"}, []string{"李小龙", "li@x.com"})
	nameOnly := grid([]string{"Name"}, []string{"李小龙"})

	assert.Equal(t, 1, ReconcileSheet(ctx, withEmail, reconcile.PassEmailRequired, state))
	assert.Equal(t, 1, ReconcileSheet(ctx, nameOnly, reconcile.PassNameOnly, state))

	li, ok := state.Identities.Get("li@x.com")
	require.True(t, ok)
	assert.Equal(t, 2, li.Count)
	assert.Equal(t, "李小龙", li.Name)
	assert.Equal(t, 1, state.Identities.Len())
	assert.Equal(t, 1, state.Names.Len())
}

func TestReconcileSheet_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := reconcile.NewState()
	sheet := grid([]string{"Name", "Email"}, []string{"Alice Smith", "alice@x.com"})
	assert.Zero(t, ReconcileSheet(ctx, sheet, reconcile.PassEmailRequired, state))
}

func TestReconcileSheet_ConcurrentSheets(t *testing.T) {
	state := reconcile.NewState()
	ctx := context.Background()

	const sheets = 40
	var wg sync.WaitGroup
	for i := 0; i < sheets; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows := [][]string{{"Name", "Email"}}
			for p := 0; p < 25; p++ {
				rows = append(rows, []string{fmt.Sprintf("Person %c%c", 'a'+p, 'a'+i%26), fmt.Sprintf("p%d@x.com", p)})
			}
			ReconcileSheet(ctx, workbook.NewGrid(fmt.Sprintf("S%d", i), rows), reconcile.PassEmailRequired, state)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, state.Identities.Len())
	for p := 0; p < 25; p++ {
		rec, ok := state.Identities.Get(fmt.Sprintf("p%d@x.com", p))
		require.True(t, ok)
		assert.Equal(t, sheets, rec.Count)
	}
}
