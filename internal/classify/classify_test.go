package classify

import "testing"

func TestDiarySearchWithArgument(t *testing.T) {
	res := Classify("일기 검색 여행")
	if res.Category != CategoryDiarySearch {
		t.Fatalf("category = %s", res.Category)
	}
	if res.Argument != "여행" {
		t.Fatalf("argument = %q, want 여행", res.Argument)
	}
}

func TestDiarySearchBeatsLaterCategories(t *testing.T) {
	// sports and weather keywords present, but a diary-search keyword
	// matches first in priority order and wins outright
	res := Classify("일기 검색 축구 날씨")
	if res.Category != CategoryDiarySearch {
		t.Fatalf("category = %s, want diary-search", res.Category)
	}
}

func TestDiaryWriteBeatsSports(t *testing.T) {
	res := Classify("오늘 축구 본 거 일기 써 줘")
	if res.Category != CategoryDiaryWrite {
		t.Fatalf("category = %s, want diary-write", res.Category)
	}
}

func TestWeatherExtractsRegion(t *testing.T) {
	res := Classify("서울 날씨")
	if res.Category != CategoryWeather {
		t.Fatalf("category = %s", res.Category)
	}
	if res.Argument != "서울" {
		t.Fatalf("argument = %q, want 서울", res.Argument)
	}
}

func TestSportsExtractsKeyword(t *testing.T) {
	res := Classify("손흥민 선수")
	if res.Category != CategorySports {
		t.Fatalf("category = %s", res.Category)
	}
	if res.Argument != "손흥민" {
		t.Fatalf("argument = %q", res.Argument)
	}
}

func TestEmptyArgumentMeansNoFilter(t *testing.T) {
	res := Classify("일기 검색")
	if res.Category != CategoryDiarySearch || res.Argument != "" {
		t.Fatalf("got %+v, want empty argument", res)
	}
}

func TestNoMatchFallsThroughToChat(t *testing.T) {
	for _, in := range []string{"오늘 하루 어땠어?", "tell me a joke", ""} {
		res := Classify(in)
		if res.Category != CategoryChat {
			t.Fatalf("%q: category = %s, want chat", in, res.Category)
		}
	}
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	res := Classify("Seoul WEATHER")
	if res.Category != CategoryWeather {
		t.Fatalf("category = %s", res.Category)
	}
	if res.Argument != "Seoul" {
		t.Fatalf("argument = %q", res.Argument)
	}
}

func TestArgumentSurvivesCaseFoldLengthChange(t *testing.T) {
	// U+0130 lowercases to a longer byte sequence; the keyword span must
	// stay aligned with the original text so the argument is not garbled
	res := Classify("İstanbul Weather")
	if res.Category != CategoryWeather {
		t.Fatalf("category = %s", res.Category)
	}
	if res.Argument != "İstanbul" {
		t.Fatalf("argument = %q, want İstanbul", res.Argument)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Classify("일기 검색 여행")
	for i := 0; i < 10; i++ {
		if got := Classify("일기 검색 여행"); got != first {
			t.Fatalf("classification drifted: %+v vs %+v", got, first)
		}
	}
}
