package service

import (
	"regexp"
	"strconv"
	"strings"

	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/repository"
)

var (
	stateCodeRe = regexp.MustCompile(`\b[A-Z]{2}\b`)
	digitRunRe  = regexp.MustCompile(`\d+`)
)

var affirmativeVocab = map[string]bool{
	"YES": true, "Y": true, "YEAH": true, "YEP": true,
	"SURE": true, "OK": true, "OKAY": true,
}

// ExtractAnswer convierte el texto crudo en una actualizacion tipada para el
// campo de la pregunta pendiente. Nunca rechaza: si no puede parsear, guarda
// el crudo (license_states) o deja el campo sin tocar (numericos).
func ExtractAnswer(field, raw string) repository.CandidateUpdate {
	raw = strings.TrimSpace(raw)

	switch field {
	case domain.FieldLicenseStates:
		value := raw
		if codes := extractStateCodes(raw); len(codes) > 0 {
			value = strings.Join(codes, ",")
		}
		return repository.CandidateUpdate{LicenseStates: &value}

	case domain.FieldYearsExperience:
		if n, ok := firstInt(raw); ok {
			return repository.CandidateUpdate{YearsExperience: &n}
		}
		return repository.CandidateUpdate{}

	case domain.FieldAvailableDate:
		value := raw
		return repository.CandidateUpdate{AvailableDate: &value}

	case domain.FieldMinWeeklyPay:
		cleaned := strings.ReplaceAll(raw, ",", "")
		if n, ok := firstInt(cleaned); ok {
			return repository.CandidateUpdate{MinWeeklyPay: &n}
		}
		return repository.CandidateUpdate{}

	case domain.FieldOpenToTravel:
		value := affirmativeVocab[strings.ToUpper(raw)]
		return repository.CandidateUpdate{OpenToTravel: &value}
	}
	return repository.CandidateUpdate{}
}

// extractStateCodes saca todos los tokens de dos letras mayusculas del texto
// en mayusculas, deduplicados preservando orden.
func extractStateCodes(raw string) []string {
	matches := stateCodeRe.FindAllString(strings.ToUpper(raw), -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func firstInt(raw string) (int, bool) {
	run := digitRunRe.FindString(raw)
	if run == "" {
		return 0, false
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return 0, false
	}
	return n, true
}
