package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/poiesic/elimu"
	"github.com/poiesic/elimu/core"
)

// documents is a small sample of curriculum content for local development.
var documents = []*core.Document{
	{
		Title:        "Mathematics Grade 4: Fractions",
		Subject:      "Mathematics",
		Grade:        "Grade 4",
		DocumentType: "notes",
		UploadedBy:   "seeder",
		ExtractedContent: "A fraction names part of a whole. The number above the line is the " +
			"numerator and the number below is the denominator. Two fractions are equivalent " +
			"when they name the same amount. To add fractions with the same denominator, add " +
			"the numerators and keep the denominator. Learners should practise shading " +
			"fraction diagrams before moving to symbols.",
	},
	{
		Title:        "Mathematics Grade 5: Decimals and Percentages",
		Subject:      "Mathematics",
		Grade:        "Grade 5",
		DocumentType: "notes",
		ExtractedContent: "Decimals extend place value to the right of the ones. One tenth is " +
			"written 0.1 and one hundredth is written 0.01. A percentage is a fraction of one " +
			"hundred. Converting between fractions, decimals and percentages is a core skill " +
			"for upper primary mathematics. Money problems give learners a familiar context.",
		UploadedBy: "seeder",
	},
	{
		Title:        "Science Grade 6: The Water Cycle",
		Subject:      "Science",
		Grade:        "Grade 6",
		DocumentType: "notes",
		UploadedBy:   "seeder",
		ExtractedContent: "Water moves between the land, the sea and the sky in a continuous " +
			"cycle. The sun heats water and it evaporates into vapour. Vapour cools and " +
			"condenses into clouds. Water falls back as rain, which we call precipitation. " +
			"Learners can model the cycle with a bowl, cling film and a sunny windowsill.",
	},
	{
		Title:        "English Grade 5: Parts of Speech",
		Subject:      "English",
		Grade:        "Grade 5",
		DocumentType: "notes",
		UploadedBy:   "seeder",
		ExtractedContent: "A noun names a person, place or thing. A verb describes an action " +
			"or a state. Adjectives describe nouns and adverbs describe verbs. Learners should " +
			"identify each part of speech in short passages before writing their own sentences.",
	},
	{
		Title:        "Kiswahili Gredi 5: Ngeli za Nomino",
		Subject:      "Kiswahili",
		Grade:        "Grade 5",
		DocumentType: "notes",
		UploadedBy:   "seeder",
		ExtractedContent: "Ngeli ni makundi ya nomino kulingana na upatanisho wa kisarufi. " +
			"Nomino za ngeli ya A-WA ni za viumbe hai kama mtu na watu. Ngeli ya KI-VI " +
			"hujumuisha vitu kama kiti na viti. Wanafunzi wajifunze kutambua ngeli kwa kutumia " +
			"sentensi sahihi.",
	},
	{
		Title:        "Social Studies Grade 6: Counties of Kenya",
		Subject:      "Social Studies",
		Grade:        "Grade 6",
		DocumentType: "notes",
		UploadedBy:   "seeder",
		ExtractedContent: "Kenya is divided into forty-seven counties, each led by a governor. " +
			"Counties provide services such as health care, early childhood education and " +
			"county roads. Learners should locate their home county on a map and name its " +
			"neighbours.",
	},
	{
		Title:        "Mathematics Grade 5: End of Term Exam",
		Subject:      "Mathematics",
		Grade:        "Grade 5",
		DocumentType: "exam",
		UploadedBy:   "seeder",
		ExtractedContent: "Question one: write three fractions equivalent to one half. " +
			"Question two: convert three quarters to a percentage. Question three: a trader " +
			"sells maize at fifty shillings per tin. Find the cost of seven tins. Show all " +
			"working clearly.",
	},
	{
		Title:        "Agriculture Grade 6: Soil Types",
		Subject:      "Agriculture",
		Grade:        "Grade 6",
		DocumentType: "notes",
		UploadedBy:   "seeder",
		ExtractedContent: "The three main soil types are sand, clay and loam. Sandy soil " +
			"drains quickly but holds few nutrients. Clay soil holds water and cracks when " +
			"dry. Loam is the best soil for most crops because it balances drainage and " +
			"fertility. A simple jar test separates the layers of a soil sample.",
	},
}

var dbPath = flag.String("db", "./elimu_db", "path to BadgerDB database directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	db, err := elimu.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	added, err := pipeline.Ingest(ctx, documents...)
	if err != nil {
		panic(err)
	}

	// Let async embedding finish before the process exits
	pipeline.Wait()

	slog.Info("seeded documents", "count", len(added))
}
