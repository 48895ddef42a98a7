package router

import (
	"fmt"
	"sort"
	"strings"

	"haru-assistant/internal/diary"
	"haru-assistant/internal/sports"
	"haru-assistant/internal/weather"
)

// displayCap limits how many entries of each sports group are listed;
// the remainder is only counted.
const displayCap = 3

// sortByDateDesc orders diaries newest first for display. Ordering is a
// caller concern; the adapter returns records as the backend sent them.
func sortByDateDesc(recs []diary.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Date > recs[j].Date
	})
}

func formatDiaryList(recs []diary.Record) string {
	if len(recs) == 0 {
		return "일기를 찾지 못했어요. (총 0개)"
	}
	sortByDateDesc(recs)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("총 %d개\n", len(recs)))
	for _, rec := range recs {
		sb.WriteString(fmt.Sprintf("%s (%s) %s\n", rec.Date, rec.Weekday(), rec.Title))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatForecast(f weather.Forecast) string {
	return fmt.Sprintf("%s 날씨: %s (최저 %.0f° / 최고 %.0f°)", f.Region, f.Outlook, f.TempMin, f.TempMax)
}

func formatSports(g sports.Groups) string {
	if g.Empty() {
		return "축구 정보를 찾지 못했어요."
	}
	var sb strings.Builder
	writeGroup(&sb, "선수", len(g.Players), func(i int) string {
		p := g.Players[i]
		return fmt.Sprintf("%s (%s, %s)", p.Name, p.Team, p.Position)
	})
	writeGroup(&sb, "구단", len(g.Teams), func(i int) string {
		t := g.Teams[i]
		return fmt.Sprintf("%s (%s)", t.Name, t.Region)
	})
	writeGroup(&sb, "경기장", len(g.Stadiums), func(i int) string {
		s := g.Stadiums[i]
		return fmt.Sprintf("%s (%s)", s.Name, s.City)
	})
	writeGroup(&sb, "경기 일정", len(g.Schedules), func(i int) string {
		m := g.Schedules[i]
		return fmt.Sprintf("%s vs %s (%s)", m.Home, m.Away, m.Date)
	})
	return strings.TrimRight(sb.String(), "\n")
}

// writeGroup renders one optional result group: up to displayCap lines,
// then the remainder as a count.
func writeGroup(sb *strings.Builder, label string, n int, line func(i int) string) {
	if n == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("[%s]\n", label))
	shown := n
	if shown > displayCap {
		shown = displayCap
	}
	for i := 0; i < shown; i++ {
		sb.WriteString("- " + line(i) + "\n")
	}
	if n > displayCap {
		sb.WriteString(fmt.Sprintf("외 %d건\n", n-displayCap))
	}
}
