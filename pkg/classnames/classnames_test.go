package classnames

import (
	"math"
	"strings"
	"testing"
)

type variant string

func (v variant) String() string { return "btn-" + string(v) }

func TestJoinFlattensFragments(t *testing.T) {
	got := Join(
		"a",
		map[string]bool{"c": false, "b": true, "d": true},
		[]string{"e", " ", "f"},
		[]any{"g", []any{"h", nil, false, 0}, 3},
		nil, true,
		variant("primary"),
		If(false, "never"), If(true, "i"),
		3.5, struct{}{},
	)
	want := "a b d e f g h 3 btn-primary i 3.5"
	if got != want {
		t.Fatalf("Join = %q, want %q", got, want)
	}
}

func TestCNConditionalMapping(t *testing.T) {
	got := CN("a", map[string]bool{"b": true, "c": false})
	fields := strings.Fields(got)
	if len(fields) != 2 || fields[0] != "a" || fields[1] != "b" {
		t.Fatalf("CN = %q, want %q", got, "a b")
	}
}

func TestCNLastConflictWins(t *testing.T) {
	if got := CN("bg-red-500", "bg-blue-500"); got != "bg-blue-500" {
		t.Fatalf("CN = %q, want bg-blue-500", got)
	}
}

func TestJoinStringifiesNonZeroNumbers(t *testing.T) {
	got := Join(uint(0), uint8(7), uint64(12), int8(-2), float32(0), 1.25, math.NaN(), int16(0))
	if want := "7 12 -2 1.25"; got != want {
		t.Fatalf("Join = %q, want %q", got, want)
	}
}

func TestMergeResolvesConflicts(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"px-2 py-1 p-3", "p-3"},
		{"p-3 px-2", "p-3 px-2"},
		{"text-xl text-red-500 text-sm", "text-red-500 text-sm"},
		{"font-bold  text-xl font-semibold", "text-xl font-semibold"},
		{"hover:bg-red-500 bg-blue-500", "hover:bg-red-500 bg-blue-500"},
		{"hover:bg-red-500 hover:bg-blue-500", "hover:bg-blue-500"},
		{"!p-2 p-4", "!p-2 p-4"},
		{"mt-2 -mt-4", "-mt-4"},
		{"block flex hidden", "hidden"},
		{"border border-2 border-red-500", "border-2 border-red-500"},
		{"border-t-2 border-4", "border-4"},
		{"rounded-tl-lg rounded-t-none", "rounded-t-none"},
		{"rounded-lg rounded-t-none", "rounded-lg rounded-t-none"},
		{"inset-0 top-2", "inset-0 top-2"},
		{"top-2 inset-0", "inset-0"},
		{"text-[12px] text-[#fff] text-base", "text-[#fff] text-base"},
		{"flex-row flex-col flex-1", "flex-col flex-1"},
		{"col-span-2 col-start-2", "col-span-2 col-start-2"},
		{"col-start-1 col-end-3 col-span-2", "col-start-1 col-end-3 col-span-2"},
		{"row-span-2 row-start-1", "row-span-2 row-start-1"},
		{"ring-offset-2 ring-offset-red-500", "ring-offset-2 ring-offset-red-500"},
		{"ring-offset-2 ring-offset-4", "ring-offset-4"},
		{"text-base/7 text-red-500", "text-base/7 text-red-500"},
		{"card card shadow", "card shadow"},
		{"w-full h-full  flex justify-center items-center bg-slate-200 bg-slate-900", "w-full h-full flex justify-center items-center bg-slate-900"},
	}
	for _, tc := range cases {
		if got := Merge(tc.in); got != tc.want {
			t.Errorf("Merge(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"a a b",
		"px-2 py-1 p-3 hover:p-1 dark:hover:p-2",
		"p-3 px-2 mx-1 m-0 my-4",
		"text-xl text-red-500 leading-tight text-sm",
		"rounded-lg rounded-t-none rounded-tl-md border border-x-2 border-red-500",
		"foo bar foo baz !bg-red-500 bg-red-500!",
	}
	for _, in := range inputs {
		once := Merge(in)
		if twice := Merge(once); twice != once {
			t.Errorf("Merge not idempotent for %q: %q then %q", in, once, twice)
		}
		if doubled := CN(once, once); doubled != once {
			t.Errorf("CN(x, x) = %q, want %q", doubled, once)
		}
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := CN(nil, "", "   ", map[string]bool{"x": false}); got != "" {
		t.Fatalf("CN of empty fragments = %q", got)
	}
}

func TestMergeDeduplicatesUnknownClasses(t *testing.T) {
	if got := Merge("card btn-primary card", "btn-primary"); got != "card btn-primary" {
		t.Fatalf("Merge = %q, want %q", got, "card btn-primary")
	}
}
