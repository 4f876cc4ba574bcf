// Package script generates the satire script for one video run. An angle
// is picked from a rotating pool, the prompt is built with an avoidance
// list from recent history, and generation runs through a provider chain
// that ends in a deterministic built-in script so a video always ships.
package script

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"satire-shorts/config"
	"satire-shorts/fallback"
	"satire-shorts/history"
	"satire-shorts/llm"
)

// Angle is one reusable satire premise.
type Angle struct {
	Name       string
	Topic      string
	VisualHint string
}

// Angles is the rotating premise pool. Recently used entries are excluded
// per run so consecutive videos do not retread the same premise.
var Angles = []Angle{
	{"inflation", "rising prices of essentials, petrol, gas, groceries", "petrol pump meter spinning wildly"},
	{"unemployment", "youth unemployment, degree holders without jobs", "students throwing paper planes made of degrees"},
	{"elections", "election promises vs reality, vote bank politics", "politicians on stage making grand promises with a lie detector"},
	{"social_media", "politicians obsessed with reels, Twitter wars, PR stunts", "leaders making reels instead of working"},
	{"budget", "Union Budget reactions, tax hikes, middle class struggles", "finance minister presenting budget while common man gasps"},
	{"startup_culture", "startup India vs reality, funding winter, jugaad culture", "startup founders pitching absurd ideas on Shark Tank"},
	{"education_system", "board exams panic, coaching mafia, NEP confusion", "school turning into a factory assembly line"},
	{"cricket_politics", "IPL auction madness, cricket diplomacy, sports budget", "politicians playing cricket in Parliament"},
	{"smart_city", "smart city project failures, pothole-filled roads, water crisis", "politician inaugurating a smart city hologram over potholes"},
	{"ai_tech", "AI replacing jobs, ChatGPT in governance, tech buzzwords", "robot sitting in Parliament answering questions"},
	{"festivals", "festival politics, holiday debates, commercialization", "leaders competing over who celebrates the biggest festival"},
	{"healthcare", "hospital queues, Ayushman Bharat reality, doctor shortage", "hospital with VIP lane for politicians and waiting line for public"},
	{"traffic_infra", "traffic jams, Delhi metro crowd, expressway tolls", "VIP convoy causing massive traffic jam"},
	{"scam_expose", "politician caught in scam, raid comedy, swiss bank humour", "politician hiding money in mattress during IT raid"},
	{"weather_crisis", "floods, heatwave, pollution AQI, climate denial", "politician giving speech in gas mask during smog"},
}

// defaultScript ships when every generation attempt fails. It follows the
// same four scene format the prompt asks the model for, so the parser and
// the rest of the pipeline treat it like any generated script.
const defaultScript = `Scene 1 -- Hook
Visual: giant petrol pump meter spinning wildly in a 3D cartoon Indian street
Narrator: "Petrol ka meter ya time machine? Dono mein paisa udta hai."

Scene 2 -- Problem
Visual: common man cycling past a fuel station with a fainting wallet
Modi: "Mitron, yeh sirf ek number hai."
Rahul: "Number? Mera pocket money bhi number ban gaya."

Scene 3 -- Punchline
Visual: auto rickshaw driver selling petrol drops like perfume samples
Kejriwal: "Free bijli de di, ab hawa bhi free kar dein kya?"

Scene 4 -- Ending
Visual: common man watching news with popcorn made of old fuel bills
Narrator: "Comedy hum nahi karte, bas roz jeete hain."`

var titleRe = regexp.MustCompile(`(?is)Scene\s*1[^\n]*\n.*?(?:Narrator|Visual)[^:]*:\s*["“]?([^"”\n]{10,80})`)
var titleJunkRe = regexp.MustCompile(`[\*#_\-=]`)

// Output is a generated script with the bookkeeping the run needs.
type Output struct {
	Text  string
	Angle string
	Title string
}

// Writer generates one script per Run, rotating angles against history.
type Writer struct {
	cfg  *config.Config
	gen  llm.Generator
	hist *history.Store

	now  func() time.Time
	rand *rand.Rand
}

// New creates a Writer.
func New(cfg *config.Config, gen llm.Generator, hist *history.Store) *Writer {
	return &Writer{
		cfg:  cfg,
		gen:  gen,
		hist: hist,
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run generates a fresh script. Each chain provider is one generation
// attempt on a distinct angle; a script too similar to recent history
// burns the attempt. The successful script is recorded in history before
// returning, including the built-in default so it rotates out too.
func (w *Writer) Run(ctx context.Context) (Output, []fallback.Attempt, error) {
	attempts := w.cfg.Script.MaxAttempts

	var tried []string
	providers := make([]fallback.Provider[struct{}, Output], 0, attempts)
	for i := 1; i <= attempts; i++ {
		providers = append(providers, fallback.Provider[struct{}, Output]{
			Name:    fmt.Sprintf("llm_attempt_%d", i),
			Attempt: func(ctx context.Context, _ struct{}) fallback.Result[Output] {
				angle := w.pickAngle(tried)
				tried = append(tried, angle.Name)

				text, err := w.gen.Generate(ctx, w.buildPrompt(angle))
				if err != nil {
					if errors.Is(err, llm.ErrNoCredentials) {
						return fallback.Abort[Output](err)
					}
					return fallback.Retry[Output](fmt.Errorf("angle %s: %w", angle.Name, err))
				}

				title := w.ExtractTitle(text)
				if w.hist.IsDuplicate(title, w.cfg.History.SimilarityThreshold) {
					return fallback.Retry[Output](fmt.Errorf("angle %s: too similar to a recent video: %q", angle.Name, title))
				}
				return fallback.Success(Output{Text: text, Angle: angle.Name, Title: title})
			},
		})
	}

	chain := &fallback.Chain[struct{}, Output]{
		Providers: providers,
		Retries:   1, // a failed attempt moves to a fresh angle, not a re-roll
		Final: func(struct{}) (Output, error) {
			return Output{
				Text:  defaultScript,
				Angle: "inflation",
				Title: w.ExtractTitle(defaultScript),
			}, nil
		},
	}

	out, record, err := chain.Run(ctx, struct{}{})
	if err != nil {
		return Output{}, record, err
	}
	if herr := w.hist.Add(out.Title, out.Angle); herr != nil {
		return out, record, fmt.Errorf("record topic history: %w", herr)
	}
	return out, record, nil
}

// pickAngle chooses a pool entry not used recently and not already tried
// this run. An exhausted pool resets to the full list.
func (w *Writer) pickAngle(tried []string) Angle {
	excluded := make(map[string]bool)
	for _, a := range w.hist.RecentAngles(w.cfg.History.AngleWindow) {
		excluded[a] = true
	}
	for _, a := range tried {
		excluded[a] = true
	}

	var available []Angle
	for _, a := range Angles {
		if !excluded[a.Name] {
			available = append(available, a)
		}
	}
	if len(available) == 0 {
		available = Angles
	}
	return available[w.rand.Intn(len(available))]
}

func (w *Writer) buildPrompt(angle Angle) string {
	now := w.now()
	var sb strings.Builder

	sb.WriteString("You are a top-tier Indian political satire writer for YouTube Shorts.\n")
	sb.WriteString(fmt.Sprintf("Today is %s. Generate a BRAND NEW, NEVER-SEEN-BEFORE comedy script.\n\n", now.Format("January 02, 2006 (Monday)")))
	sb.WriteString(fmt.Sprintf("TODAY'S ANGLE: %s\n", angle.Topic))
	sb.WriteString(fmt.Sprintf("Visual inspiration: %s\n\n", angle.VisualHint))
	sb.WriteString("Write a VERY SHORT (30 seconds / 60-80 words) Hindi-English mix comedy script.\n")
	sb.WriteString(fmt.Sprintf("Make it TOPICAL and FRESH — reference current events, trending topics, or seasonal themes for %s.\n\n", now.Format("January 2006")))

	sb.WriteString("FORMAT - exactly 4 scenes:\n\n")
	sb.WriteString("Scene 1 -- Hook\n")
	sb.WriteString(fmt.Sprintf("Visual: [describe a funny 3D cartoon scene with Indian politicians, related to %s]\n", angle.Topic))
	sb.WriteString("Narrator: [one punchy sarcastic line in Hinglish]\n\n")
	sb.WriteString("Scene 2 -- Problem\n")
	sb.WriteString(fmt.Sprintf("Visual: [visual gag about %s]\n", angle.Topic))
	sb.WriteString(fmt.Sprintf("Modi: [funny dialogue about %s]\n", angle.Topic))
	sb.WriteString("Rahul: [funny response]\n\n")
	sb.WriteString("Scene 3 -- Punchline\n")
	sb.WriteString("Visual: [unexpected visual comedy twist]\n")
	sb.WriteString("Kejriwal: [sarcastic one-liner]\n\n")
	sb.WriteString("Scene 4 -- Ending\n")
	sb.WriteString("Visual: [common man reaction shot]\n")
	sb.WriteString("Narrator: [final punchline with a message]\n\n")

	sb.WriteString("RULES:\n")
	sb.WriteString("- MUST be completely ORIGINAL and UNIQUE — never repeat the same joke or setup\n")
	sb.WriteString("- Keep it FUNNY and SARCASTIC\n")
	sb.WriteString("- No hate speech, no abuse\n")
	sb.WriteString("- Mix Hindi + English naturally (Hinglish)\n")
	sb.WriteString("- Total spoken words: 60-80 (fits 30 seconds)\n")
	sb.WriteString("- Each dialogue max 15 words\n")
	sb.WriteString("- Make it VIRAL-worthy and SHAREABLE\n")
	sb.WriteString(fmt.Sprintf("- Reference %s creatively", angle.Topic))

	if recent := w.hist.RecentTitles(10); len(recent) > 0 {
		sb.WriteString("\n\nCRITICAL — DO NOT REPEAT these recent topics (generate something COMPLETELY different):\n")
		for _, t := range recent {
			sb.WriteString("  - " + t + "\n")
		}
	}
	if today := w.hist.TitlesToday(); len(today) > 0 {
		sb.WriteString(fmt.Sprintf("Already generated today: %s. Pick a TOTALLY different angle.", strings.Join(today, ", ")))
	}
	return sb.String()
}

// ExtractTitle pulls a title-like summary out of a script for history
// tracking: the first hook line of scene 1, else the opening words.
func (w *Writer) ExtractTitle(text string) string {
	if m := titleRe.FindStringSubmatch(text); m != nil {
		title := strings.TrimSpace(m[1])
		if runes := []rune(title); len(runes) > 80 {
			title = string(runes[:80])
		}
		return title
	}
	clean := strings.TrimSpace(titleJunkRe.ReplaceAllString(text, ""))
	if runes := []rune(clean); len(runes) > 80 {
		clean = string(runes[:80])
	}
	if clean != "" {
		return clean
	}
	return "Script " + w.now().Format("20060102_1504")
}
