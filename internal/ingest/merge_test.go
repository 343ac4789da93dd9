package ingest

import (
	"reflect"
	"testing"
)

func TestMergeFeatures_EmptyBaseAdoptsIncoming(t *testing.T) {
	incoming := ResumeFeatures{
		ContactInfo: ContactInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Skills:      SkillSet{Technical: []string{"Go"}},
	}
	got := MergeFeatures(ResumeFeatures{}, incoming)
	if !reflect.DeepEqual(got, incoming) {
		t.Fatalf("empty base must adopt incoming: got %+v", got)
	}
}

func TestMergeFeatures_ListsConcatenateWithoutDedup(t *testing.T) {
	existing := ResumeFeatures{
		WorkExperience: []WorkExperience{{Company: "Acme", Title: "Engineer"}},
		Certifications: []string{"AWS SAA"},
	}
	incoming := ResumeFeatures{
		WorkExperience: []WorkExperience{{Company: "Acme", Title: "Engineer"}},
		Certifications: []string{"AWS SAA"},
	}
	got := MergeFeatures(existing, incoming)
	if len(got.WorkExperience) != 2 {
		t.Fatalf("work experience: want=2 got=%d", len(got.WorkExperience))
	}
	if len(got.Certifications) != 2 {
		t.Fatalf("certifications: want=2 got=%d", len(got.Certifications))
	}
}

func TestMergeFeatures_SkillsUnionPreservesFirstSeenOrder(t *testing.T) {
	existing := ResumeFeatures{Skills: SkillSet{Technical: []string{"Go", "Python"}}}
	incoming := ResumeFeatures{Skills: SkillSet{Technical: []string{"Python", "Rust"}}}
	got := MergeFeatures(existing, incoming)
	want := []string{"Go", "Python", "Rust"}
	if !reflect.DeepEqual(got.Skills.Technical, want) {
		t.Fatalf("technical skills: want=%v got=%v", want, got.Skills.Technical)
	}
}

func TestMergeFeatures_SkillsUnionIsCaseSensitive(t *testing.T) {
	existing := ResumeFeatures{Skills: SkillSet{Technical: []string{"Python"}}}
	incoming := ResumeFeatures{Skills: SkillSet{Technical: []string{"python"}}}
	got := MergeFeatures(existing, incoming)
	if len(got.Skills.Technical) != 2 {
		t.Fatalf("case variants must survive merge: got %v", got.Skills.Technical)
	}
}

func TestMergeFeatures_ContactFirstNonEmptyWins(t *testing.T) {
	existing := ResumeFeatures{ContactInfo: ContactInfo{Name: "Ada", Email: ""}}
	incoming := ResumeFeatures{ContactInfo: ContactInfo{Name: "Someone Else", Email: "ada@example.com"}}
	got := MergeFeatures(existing, incoming)
	if got.ContactInfo.Name != "Ada" {
		t.Fatalf("name: want=Ada got=%q", got.ContactInfo.Name)
	}
	if got.ContactInfo.Email != "ada@example.com" {
		t.Fatalf("email: want filled from incoming, got %q", got.ContactInfo.Email)
	}
}

func TestMergeFeatures_Idempotent(t *testing.T) {
	a := ResumeFeatures{
		ContactInfo: ContactInfo{Name: "Ada"},
		Skills:      SkillSet{Technical: []string{"Go"}, Soft: []string{"Communication"}},
	}
	b := ResumeFeatures{
		Skills:    SkillSet{Technical: []string{"Python"}},
		Languages: []string{"English"},
	}
	once := MergeFeatures(a, b)
	twice := MergeFeatures(once, b)
	if !reflect.DeepEqual(once.Skills, twice.Skills) {
		t.Fatalf("skill union not idempotent: %v vs %v", once.Skills, twice.Skills)
	}
	if !reflect.DeepEqual(once.ContactInfo, twice.ContactInfo) {
		t.Fatalf("contact merge not idempotent: %v vs %v", once.ContactInfo, twice.ContactInfo)
	}
}
