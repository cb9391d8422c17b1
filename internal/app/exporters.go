package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klabast/wb-services/recept/internal/mealplan"
	"github.com/xuri/excelize/v2"
)

// PlannedMeal is one exported row of the week plan
type PlannedMeal struct {
	Date  string `json:"date"`
	Day   string `json:"day"`
	Title string `json:"title"`
}

// flattenWeek lists the planned meals of the week in day order
func flattenWeek(days []mealplan.DayView) []PlannedMeal {
	var meals []PlannedMeal
	for _, d := range days {
		for _, m := range d.Meals {
			meals = append(meals, PlannedMeal{Date: d.Date, Day: d.Name, Title: m.Title})
		}
	}
	return meals
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// HandleDownload exports the current week in ICS, CSV, JSON or XLSX format
func HandleDownload(w http.ResponseWriter, r *http.Request, user *User) {
	format := r.URL.Query().Get("format")

	week, err := buildWeek(plannerFor(user))
	if err != nil {
		log.Printf("Error loading meal plan: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	meals := flattenWeek(week.Days)

	switch format {
	case "ics":
		GenerateICS(w, r, week.Min, meals)
	case "csv":
		GenerateCSV(w, week.Min, meals)
	case "json":
		GenerateJSON(w, week.Min, meals)
	case "xlsx":
		GenerateXLSX(w, week.Min, meals)
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

// GenerateICS generates an iCalendar (ICS) file with optional reminders
func GenerateICS(w http.ResponseWriter, r *http.Request, weekStart string, meals []PlannedMeal) {
	// Parse reminder settings
	reminder1Day := r.URL.Query().Get("reminder1Day") == "true"
	reminderSameDay := r.URL.Query().Get("reminderSameDay") == "true"
	time1Day := r.URL.Query().Get("time1Day")
	timeSameDay := r.URL.Query().Get("timeSameDay")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=meal_plan_%s.ics", weekStart))

	// ICS header
	fmt.Fprintln(w, "BEGIN:VCALENDAR")
	fmt.Fprintln(w, "VERSION:2.0")
	fmt.Fprintf(w, "PRODID:%s\n", ICSProductID)
	fmt.Fprintf(w, "X-WR-CALNAME:Meal plan %s\n", weekStart)
	fmt.Fprintf(w, "X-WR-TIMEZONE:%s\n", ICSTimezone)
	fmt.Fprintln(w, "CALSCALE:GREGORIAN")

	// Position of each meal within its day keeps UIDs unique
	perDay := make(map[string]int)
	for _, meal := range meals {
		mealDate, err := time.Parse(mealplan.DateLayout, meal.Date)
		if err != nil {
			continue
		}
		n := perDay[meal.Date]
		perDay[meal.Date]++

		uid := fmt.Sprintf("%s-%d@mealplan.recept", meal.Date, n)
		title := icsEscaper.Replace(meal.Title)

		// Event - all-day event
		fmt.Fprintln(w, "BEGIN:VEVENT")
		fmt.Fprintf(w, "UID:%s\n", uid)
		fmt.Fprintf(w, "DTSTAMP:%s\n", time.Now().UTC().Format("20060102T150405Z"))
		fmt.Fprintf(w, "DTSTART;VALUE=DATE:%s\n", mealDate.Format("20060102"))
		fmt.Fprintf(w, "DTEND;VALUE=DATE:%s\n", mealDate.AddDate(0, 0, 1).Format("20060102"))
		fmt.Fprintf(w, "SUMMARY:%s\n", title)
		fmt.Fprintf(w, "DESCRIPTION:Planned for %s\n", meal.Day)

		if reminder1Day && time1Day != "" {
			AddAlarm(w, mealDate, 1, time1Day, title)
		}
		if reminderSameDay && timeSameDay != "" {
			AddAlarm(w, mealDate, 0, timeSameDay, title)
		}

		fmt.Fprintln(w, "END:VEVENT")
	}

	fmt.Fprintln(w, "END:VCALENDAR")
}

// AddAlarm adds an alarm/reminder to an ICS event
func AddAlarm(w io.Writer, eventDate time.Time, daysBefore int, alarmTime string, description string) {
	// Parse alarm time (HH:MM format)
	parts := strings.Split(alarmTime, ":")
	if len(parts) != 2 {
		return
	}

	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return
	}

	// Alarm fires at alarmTime on (eventDate - daysBefore); the event starts at 00:00
	alarmDate := eventDate.AddDate(0, 0, -daysBefore)
	alarmDateTime := time.Date(alarmDate.Year(), alarmDate.Month(), alarmDate.Day(), hour, minute, 0, 0, time.UTC)
	eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, time.UTC)

	totalMinutes := int(alarmDateTime.Sub(eventStart).Minutes())
	isNegative := totalMinutes < 0
	if isNegative {
		totalMinutes = -totalMinutes
	}

	days := totalMinutes / (24 * 60)
	remainingMinutes := totalMinutes % (24 * 60)
	hours := remainingMinutes / 60
	minutes := remainingMinutes % 60

	trigger := fmt.Sprintf("P%dDT%dH%dM", days, hours, minutes)
	if isNegative {
		trigger = "-" + trigger
	}

	fmt.Fprintln(w, "BEGIN:VALARM")
	fmt.Fprintln(w, "ACTION:DISPLAY")
	fmt.Fprintf(w, "DESCRIPTION:Reminder: %s\n", description)
	fmt.Fprintf(w, "TRIGGER:%s\n", trigger)
	fmt.Fprintln(w, "END:VALARM")
}

// GenerateCSV generates a CSV file of the planned meals
func GenerateCSV(w http.ResponseWriter, weekStart string, meals []PlannedMeal) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=meal_plan_%s.csv", weekStart))

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Day", "Title"}); err != nil {
		log.Printf("Error writing CSV: %v", err)
		return
	}
	for _, meal := range meals {
		if err := cw.Write([]string{meal.Date, meal.Day, meal.Title}); err != nil {
			log.Printf("Error writing CSV: %v", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("Error writing CSV: %v", err)
	}
}

// GenerateJSON generates a JSON file of the planned meals
func GenerateJSON(w http.ResponseWriter, weekStart string, meals []PlannedMeal) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=meal_plan_%s.json", weekStart))

	if meals == nil {
		meals = []PlannedMeal{}
	}
	data := map[string]interface{}{
		"week_start": weekStart,
		"meals":      meals,
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON export: %v", err)
		http.Error(w, ErrFailedToGenerateJSON, http.StatusInternalServerError)
	}
}

// GenerateXLSX generates a spreadsheet of the planned meals
func GenerateXLSX(w http.ResponseWriter, weekStart string, meals []PlannedMeal) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing workbook: %v", err)
		}
	}()

	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		log.Printf("Error creating XLSX stream: %v", err)
		http.Error(w, ErrFailedToGenerateXLSX, http.StatusInternalServerError)
		return
	}
	if err := sw.SetRow("A1", []interface{}{"Date", "Day", "Title"}); err != nil {
		log.Printf("Error writing XLSX header: %v", err)
		http.Error(w, ErrFailedToGenerateXLSX, http.StatusInternalServerError)
		return
	}
	for i, meal := range meals {
		cell, _ := excelize.CoordinatesToCellName(1, i+2) // A2, A3, ...
		if err := sw.SetRow(cell, []interface{}{meal.Date, meal.Day, meal.Title}); err != nil {
			log.Printf("Error writing XLSX row: %v", err)
			http.Error(w, ErrFailedToGenerateXLSX, http.StatusInternalServerError)
			return
		}
	}
	if err := sw.Flush(); err != nil {
		log.Printf("Error flushing XLSX: %v", err)
		http.Error(w, ErrFailedToGenerateXLSX, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=meal_plan_%s.xlsx", weekStart))
	if err := f.Write(w); err != nil {
		log.Printf("Error writing XLSX: %v", err)
	}
}
