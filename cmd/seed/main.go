package main

import (
	"context"
	"os"
	"veluna/config"
	"veluna/internal/calendar"
	"veluna/internal/database"
	"veluna/internal/models"
	"veluna/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/datatypes"
)

// Seeds the oil catalog and the portal-day set. Safe to re-run: oils are
// upserted by name and portal days are a set union.
func main() {
	log := logger.New("seed")

	if _, err := config.InitConfig(); err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(config.GetConfig())
	if err != nil {
		log.Er("failed to connect database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Er("failed to close database", err)
		}
	}()

	if err := db.MigrateModels(); err != nil {
		log.Er("failed to migrate models", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repos := repositories.New(db)

	if err := repos.Oil.UpsertBatch(ctx, oilCatalog()); err != nil {
		log.Er("failed to seed oil catalog", err)
		os.Exit(1)
	}

	added, err := repos.PortalDay.Populate(ctx, calendar.KnownPortalDays())
	if err != nil {
		log.Er("failed to populate portal days", err)
		os.Exit(1)
	}

	log.Info("Seed complete", "oils", len(oilCatalog()), "portalDaysAdded", added)
}

func oilCatalog() []models.Oil {
	return []models.Oil{
		{
			Name:             "Lavender",
			AlternativeNames: datatypes.JSON(`["Lavendel"]`),
			EnergeticEffects: "Lavender wirkt beruhigend auf das emotionale Zentrum und fördert tiefe Entspannung. Es hilft beim Loslassen von Stress und unterstützt einen erholsamen Schlaf.",
			MainComponents: datatypes.JSON(
				`["Linalool: Beruhigend und entspannend", "Linalyl Acetate: Anti-Stress und harmonisierend", "Terpinen-4-ol: Entzündungshemmend"]`,
			),
			InterestingFacts:  "Lavendel wurde bereits in der Antike für seine beruhigenden Eigenschaften geschätzt. Der Name leitet sich vom lateinischen 'lavare' (waschen) ab.",
			Contraindications: "Gilt als sehr sicher. Bei empfindlicher Haut mit Trägeröl verdünnen.",
			BestUses: datatypes.JSON(
				`["Topisch auf Schläfen und Handgelenken", "Aromatisch im Diffuser vor dem Schlaf", "Intern in Kapseln für Entspannung"]`,
			),
		},
		{
			Name:             "Frankincense",
			AlternativeNames: datatypes.JSON(`["Weihrauch"]`),
			EnergeticEffects: "Weihrauch verbindet uns mit dem Spirituellen und fördert tiefe Erdung. Es unterstützt Meditation und bringt Frieden und spirituelle Weisheit.",
			MainComponents: datatypes.JSON(
				`["Alpha-Pinene: Entzündungshemmend und kognitive Unterstützung", "Limonene: Stimmungsaufhellend", "Alpha-Thujene: Zellschutz"]`,
			),
			InterestingFacts:  "Weihrauch wird seit über 5000 Jahren für spirituelle Zeremonien verwendet.",
			Contraindications: "Sehr sicher. Kann während der Schwangerschaft verwendet werden.",
			BestUses: datatypes.JSON(
				`["Topisch auf Handgelenken und über dem Herzen", "Aromatisch während Meditation", "Intern für zelluläre Unterstützung"]`,
			),
		},
		{
			Name:             "Peppermint",
			AlternativeNames: datatypes.JSON(`["Pfefferminze"]`),
			EnergeticEffects: "Pfefferminze bringt Klarheit und geistige Frische. Sie unterstützt Fokus und Konzentration und hilft bei mentaler Erschöpfung.",
			MainComponents: datatypes.JSON(
				`["Menthol: Kühlend und erfrischend", "Menthon: Entspannend", "Menthyl Acetate: Beruhigend für Muskeln"]`,
			),
			InterestingFacts:  "Pfefferminze ist eine natürliche Hybridpflanze aus Wasserminze und Grüner Minze.",
			Contraindications: "Nicht bei Kindern unter 6 Jahren verwenden. Kann die Milchproduktion bei stillenden Müttern beeinflussen.",
			BestUses: datatypes.JSON(
				`["Topisch auf Nacken und Schläfen für Fokus", "Direkt inhalieren für Energie", "Intern in Wasser für Verdauung"]`,
			),
		},
		{
			Name:             "Wild Orange",
			AlternativeNames: datatypes.JSON(`["Wilde Orange", "Orange"]`),
			EnergeticEffects: "Wilde Orange hebt die Stimmung und bringt Lebensfreude. Sie fördert Kreativität und einen Zustand der Fülle.",
			MainComponents: datatypes.JSON(
				`["Limonene: Stimmungsaufhellend und reinigend"]`,
			),
			InterestingFacts:  "Für ein Kilogramm Öl werden die Schalen von etwa 200 Orangen kaltgepresst.",
			Contraindications: "Photosensibilisierend. Nach topischer Anwendung direkte Sonne meiden.",
			BestUses: datatypes.JSON(
				`["Aromatisch im Diffuser am Morgen", "Intern in Wasser für Frische"]`,
			),
		},
		{
			Name:             "Bergamot",
			AlternativeNames: datatypes.JSON(`["Bergamotte"]`),
			EnergeticEffects: "Bergamotte stärkt das Selbstvertrauen und löst Selbstzweifel. Sie bringt Licht in schwere Gemütszustände.",
			MainComponents: datatypes.JSON(
				`["Limonene: Stimmungsaufhellend", "Linalyl Acetate: Beruhigend"]`,
			),
			InterestingFacts:  "Bergamotte gibt dem Earl-Grey-Tee sein typisches Aroma.",
			Contraindications: "Stark photosensibilisierend. Zwölf Stunden nach Anwendung keine direkte Sonne.",
			BestUses: datatypes.JSON(
				`["Topisch verdünnt über dem Herzen", "Aromatisch bei Anspannung"]`,
			),
		},
		{
			Name:             "Cedarwood",
			AlternativeNames: datatypes.JSON(`["Zedernholz", "Zeder"]`),
			EnergeticEffects: "Zedernholz erdet und vermittelt Sicherheit und Zugehörigkeit. Es unterstützt einen tiefen, ruhigen Schlaf.",
			MainComponents: datatypes.JSON(
				`["Cedrol: Beruhigend", "Alpha-Cedrene: Ausgleichend"]`,
			),
			InterestingFacts:  "Zedernholzöl gehört zu den ältesten dokumentierten Aromastoffen der Menschheit.",
			Contraindications: "Nicht während der Schwangerschaft intern verwenden.",
			BestUses: datatypes.JSON(
				`["Aromatisch im Diffuser am Abend", "Topisch auf den Fußsohlen"]`,
			),
		},
	}
}
