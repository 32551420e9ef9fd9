package pipeline

import (
	"reflect"
	"testing"

	"nychealth/internal"
)

func mergeFixture() []internal.Record {
	total := internal.NewRecord(april1)
	total.ConfirmedTot = intp(1000)

	female := internal.NewRecord(april1)
	female.Sex = strp("Female")
	female.ConfirmedTot = intp(400)

	hospTotal := internal.NewRecord(april1)
	hospTotal.HospitalizedTot = intp(200)
	hospTotal.ConfirmedTot = intp(1001)

	deathsTotal := internal.NewRecord(april1)
	deathsTotal.DeathsTot = intp(25)

	femaleDeaths := internal.NewRecord(april1)
	femaleDeaths.Sex = strp("Female")
	femaleDeaths.UnderlyingConditions = internal.ConditionYes
	femaleDeaths.DeathsTot = intp(4)

	return []internal.Record{total, female, hospTotal, deathsTotal, femaleDeaths}
}

func TestMergeUnionsCountsByKey(t *testing.T) {
	merged := Merge(mergeFixture())
	if len(merged) != 3 {
		t.Fatalf("expected 3 records, got %d", len(merged))
	}

	total := merged[0]
	if countOf(total.ConfirmedTot) != 1001 {
		t.Fatalf("later confirmed count should win, got %d", countOf(total.ConfirmedTot))
	}
	if countOf(total.HospitalizedTot) != 200 || countOf(total.DeathsTot) != 25 {
		t.Fatalf("expected union of counts, got hosp=%d deaths=%d", countOf(total.HospitalizedTot), countOf(total.DeathsTot))
	}

	if merged[1].Sex == nil || *merged[1].Sex != "Female" || merged[1].DeathsTot != nil {
		t.Fatalf("Female record should keep first-seen position and its own counts: %+v", merged[1].Key())
	}
	if merged[2].UnderlyingConditions != internal.ConditionYes {
		t.Fatalf("condition is part of the key, got %+v", merged[2].Key())
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	once := Merge(mergeFixture())
	twice := Merge(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\n once %+v\ntwice %+v", once, twice)
	}
}

func TestMergeLeavesInputUntouched(t *testing.T) {
	in := mergeFixture()
	_ = Merge(in)
	if in[0].HospitalizedTot != nil || countOf(in[0].ConfirmedTot) != 1000 {
		t.Fatal("merge mutated its input")
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}
