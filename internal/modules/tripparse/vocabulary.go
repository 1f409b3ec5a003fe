// README: Vocabulary tables shared by the patterns and extractors.
package tripparse

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

var tensWords = map[string]int{
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60,
	"seventy": 70, "eighty": 80, "ninety": 90,
}

var magnitudeWords = map[string]int{
	"hundred":  100,
	"thousand": 1000,
	"grand":    1000,
}

// Named-group traveler counts. These are heuristic defaults for phrasings
// that imply a group without stating its size, not literal counts.
const (
	soloTravelers   = 1
	coupleTravelers = 2
	defaultFamilyOf = 4
)

var accommodationSynonyms = map[string]Accommodation{
	"hotel":             AccommodationHotel,
	"hotels":            AccommodationHotel,
	"motel":             AccommodationHotel,
	"inn":               AccommodationHotel,
	"b&b":               AccommodationHotel,
	"bed and breakfast": AccommodationHotel,
	"airbnb":            AccommodationAirbnb,
	"air bnb":           AccommodationAirbnb,
	"vrbo":              AccommodationAirbnb,
	"vacation rental":   AccommodationAirbnb,
	"holiday rental":    AccommodationAirbnb,
	"apartment":         AccommodationAirbnb,
	"condo":             AccommodationAirbnb,
	"villa":             AccommodationAirbnb,
	"hostel":            AccommodationHostel,
	"hostels":           AccommodationHostel,
	"backpackers":       AccommodationHostel,
	"resort":            AccommodationResort,
	"resorts":           AccommodationResort,
	"all-inclusive":     AccommodationResort,
	"all inclusive":     AccommodationResort,
}

// interestKeywords maps a keyword to every category it signals.
var interestKeywords = map[string][]string{
	"culture":        {InterestCulture},
	"cultural":       {InterestCulture},
	"museum":         {InterestCulture},
	"museums":        {InterestCulture},
	"history":        {InterestCulture},
	"historical":     {InterestCulture},
	"historic":       {InterestCulture},
	"art":            {InterestCulture},
	"galleries":      {InterestCulture},
	"temples":        {InterestCulture},
	"architecture":   {InterestCulture},
	"heritage":       {InterestCulture},
	"walking tour":   {InterestCulture},
	"walking tours":  {InterestCulture},
	"adventure":      {InterestAdventure},
	"adventures":     {InterestAdventure},
	"adventurous":    {InterestAdventure},
	"hiking":         {InterestAdventure, InterestNature},
	"trekking":       {InterestAdventure, InterestNature},
	"climbing":       {InterestAdventure},
	"rafting":        {InterestAdventure},
	"diving":         {InterestAdventure},
	"scuba":          {InterestAdventure},
	"surfing":        {InterestAdventure},
	"skiing":         {InterestAdventure},
	"snorkeling":     {InterestAdventure, InterestNature},
	"ziplining":      {InterestAdventure},
	"food":           {InterestFood},
	"foodie":         {InterestFood},
	"street food":    {InterestFood},
	"cuisine":        {InterestFood},
	"restaurants":    {InterestFood},
	"dining":         {InterestFood},
	"eating":         {InterestFood},
	"cooking class":  {InterestFood},
	"wine":           {InterestFood},
	"wine tasting":   {InterestFood},
	"relax":          {InterestRelaxation},
	"relaxing":       {InterestRelaxation},
	"relaxation":     {InterestRelaxation},
	"unwind":         {InterestRelaxation},
	"spa":            {InterestRelaxation},
	"beach":          {InterestRelaxation, InterestNature},
	"beaches":        {InterestRelaxation, InterestNature},
	"nature":         {InterestNature},
	"outdoors":       {InterestNature},
	"wildlife":       {InterestNature},
	"national park":  {InterestNature},
	"national parks": {InterestNature},
	"mountains":      {InterestNature},
	"forests":        {InterestNature},
	"lakes":          {InterestNature},
	"scenery":        {InterestNature, InterestPhotography},
	"shopping":       {InterestShopping},
	"shops":          {InterestShopping},
	"markets":        {InterestShopping},
	"boutiques":      {InterestShopping},
	"malls":          {InterestShopping},
	"souvenirs":      {InterestShopping},
	"nightlife":      {InterestNightlife},
	"night life":     {InterestNightlife},
	"bars":           {InterestNightlife},
	"pubs":           {InterestNightlife},
	"clubs":          {InterestNightlife},
	"clubbing":       {InterestNightlife},
	"party":          {InterestNightlife},
	"partying":       {InterestNightlife},
	"live music":     {InterestNightlife},
	"photography":    {InterestPhotography},
	"photos":         {InterestPhotography},
	"photo":          {InterestPhotography},
	"pictures":       {InterestPhotography},
	"instagram":      {InterestPhotography},
	"sightseeing":    {InterestCulture, InterestPhotography},
}

var transportKeywords = map[string][]string{
	"flight":                {TransportFlights},
	"flights":               {TransportFlights},
	"fly":                   {TransportFlights},
	"flying":                {TransportFlights},
	"plane":                 {TransportFlights},
	"airplane":              {TransportFlights},
	"airfare":               {TransportFlights},
	"air":                   {TransportFlights},
	"rental car":            {TransportCarRental},
	"car rental":            {TransportCarRental},
	"rent a car":            {TransportCarRental},
	"renting a car":         {TransportCarRental},
	"hire a car":            {TransportCarRental},
	"road trip":             {TransportCarRental},
	"drive":                 {TransportCarRental},
	"driving":               {TransportCarRental},
	"car":                   {TransportCarRental},
	"public transport":      {TransportPublic},
	"public transportation": {TransportPublic},
	"public transit":        {TransportPublic},
	"transit":               {TransportPublic},
	"train":                 {TransportPublic},
	"trains":                {TransportPublic},
	"rail":                  {TransportPublic},
	"subway":                {TransportPublic},
	"metro":                 {TransportPublic},
	"bus":                   {TransportPublic},
	"buses":                 {TransportPublic},
	"tram":                  {TransportPublic},
	"ferry":                 {TransportPublic},
	"walk":                  {TransportWalking},
	"walking":               {TransportWalking},
	"on foot":               {TransportWalking},
	"foot":                  {TransportWalking},
	"walkable":              {TransportWalking},
}

// bareTransportExcluded keeps ambiguous one-word keywords out of the bare
// keyword pattern; they only count after "by", "via" or "on".
var bareTransportExcluded = map[string]bool{
	"air":  true,
	"foot": true,
}

// placeRejects are phrases a destination pattern can capture that are not places.
var placeRejects = map[string]bool{
	"a": true, "an": true, "the": true, "be": true, "go": true, "do": true,
	"see": true, "visit": true, "stay": true, "have": true, "get": true,
	"take": true, "bring": true, "travel": true, "fly": true, "spend": true,
	"rent": true, "book": true, "eat": true, "try": true, "explore": true,
	"relax": true, "hike": true, "check": true, "make": true, "need": true,
	"want": true, "use": true, "leave": true, "start": true, "plan": true,
	"it": true, "there": true, "somewhere": true, "anywhere": true,
	"my": true, "our": true, "some": true, "lots": true, "all": true,
	"friends": true, "family": true, "relatives": true, "work": true,
}

// stopwords are excluded from the uncovered-words diagnostic.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"i": true, "i'm": true, "im": true, "me": true, "my": true, "we": true,
	"we're": true, "us": true, "our": true, "you": true, "it": true, "it's": true,
	"is": true, "are": true, "was": true, "be": true, "been": true, "am": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "for": true,
	"with": true, "from": true, "by": true, "about": true, "into": true,
	"so": true, "um": true, "uh": true, "like": true, "just": true, "really": true,
	"want": true, "would": true, "i'd": true, "going": true,
	"go": true, "some": true, "that": true, "this": true, "there": true,
	"also": true, "maybe": true, "please": true, "can": true, "could": true,
	"will": true, "yeah": true, "okay": true, "ok": true, "well": true,
	"think": true, "thinking": true, "plan": true, "planning": true, "trip": true,
	"do": true, "have": true, "get": true, "very": true, "too": true,
}

// alt builds a regexp alternation from words, longest first so that
// leftmost-first matching prefers "street food" over "food".
func alt(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func keysExcept[V any](m map[string]V, skip map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if !skip[k] {
			out = append(out, k)
		}
	}
	return out
}

// normalizeKeyword lowercases and collapses internal whitespace so a matched
// span can be looked up in the keyword tables.
func normalizeKeyword(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
