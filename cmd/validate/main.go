package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/quest"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <questpack.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &PackValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Quest pack is valid!")
}

type PackValidator struct {
	errors []string
}

func (v *PackValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("quest pack file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidPackFilename(nameWithoutExt) {
		return fmt.Errorf("quest pack filename '%s' must be lowercase snake_case (e.g., wolves_of_varn.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var p quest.Pack
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&p); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validatePack(&p)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *PackValidator) validatePack(p *quest.Pack) {
	for _, finding := range p.Validate() {
		v.addError(finding)
	}

	for questID, q := range p.Quests {
		v.validateIDFormat("quest ID", questID)
		if q == nil {
			continue
		}
		for _, o := range q.Objectives {
			if o == nil {
				continue
			}
			v.validateIDFormat("objective ID", o.ID)
			v.validateObjectiveType(questID, o)
		}
		for domain := range q.Aliases {
			v.validateAliasDomain(fmt.Sprintf("quest %s alias domain", questID), domain)
		}
	}

	for domain := range p.Aliases {
		v.validateAliasDomain("alias domain", domain)
	}
}

func (v *PackValidator) validateObjectiveType(questID string, o *quest.Objective) {
	switch o.Type {
	case "", quest.ObjectiveKill, quest.ObjectiveFetch, quest.ObjectiveExplore,
		quest.ObjectiveVisit, quest.ObjectiveInteract, quest.ObjectiveFlag:
	default:
		v.addError(fmt.Sprintf("quest %s objective %s has unknown type '%s'", questID, o.ID, o.Type))
	}

	// Derivable types need a target to derive a condition from.
	if o.Condition == nil && o.TargetID == "" &&
		(o.Type == quest.ObjectiveKill || o.Type == quest.ObjectiveFetch ||
			o.Type == quest.ObjectiveExplore || o.Type == quest.ObjectiveVisit) {
		v.addError(fmt.Sprintf("quest %s objective %s has neither a condition nor a target_id", questID, o.ID))
	}
}

func (v *PackValidator) validateAliasDomain(context, domain string) {
	switch domain {
	case "entities", "items", "locations":
	default:
		v.addError(fmt.Sprintf("%s '%s' is not one of entities, items, locations", context, domain))
	}
}

func (v *PackValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *PackValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidPackFilename(name string) bool {
	// Allow 'x.' prefix for experimental packs
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
