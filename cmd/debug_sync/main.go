package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	limit := flag.Int64("n", 10, "number of documents to show per collection")
	form := flag.String("form", "", "only show leads from this form id")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.DBName)

	// 1. Campaigns, most recently synced first
	fmt.Println("--- Campaigns ---")
	campOpts := options.Find().SetSort(bson.M{"last_synced_at": -1}).SetLimit(*limit)
	cur, err := db.Collection("campaigns").Find(ctx, bson.M{}, campOpts)
	if err != nil {
		log.Fatal(err)
	}
	var campaigns []bson.M
	if err := cur.All(ctx, &campaigns); err != nil {
		log.Fatal(err)
	}
	for _, c := range campaigns {
		fmt.Printf("ExternalID: %v, Name: %v, Status: %v, Account: %v\n", c["external_id"], c["name"], c["status"], c["account_id"])
		if callers, ok := c["assigned_callers"].(bson.A); ok {
			for _, cw := range callers {
				if w, ok := cw.(bson.M); ok {
					fmt.Printf("  - Caller: %v, Weight: %v\n", w["caller_id"], w["percentage"])
				}
			}
		}
	}

	// 2. Leads, newest submissions first
	fmt.Println("\n--- Leads ---")
	filter := bson.M{}
	if *form != "" {
		filter["form_id"] = *form
	}
	leadOpts := options.Find().SetSort(bson.M{"submitted_at": -1}).SetLimit(*limit)
	leadCur, err := db.Collection("leads").Find(ctx, filter, leadOpts)
	if err != nil {
		log.Fatal(err)
	}
	var leads []bson.M
	if err := leadCur.All(ctx, &leads); err != nil {
		log.Fatal(err)
	}
	for _, l := range leads {
		fmt.Printf("ID: %v, Form: %v, Campaign: %v, City: %v, State: %v, AssignedTo: %v, SubmittedAt: %v\n",
			l["external_lead_id"], l["form_id"], l["campaign_id"], l["city"], l["state"], l["assigned_to"], l["submitted_at"])
	}

	total, err := db.Collection("leads").CountDocuments(ctx, filter)
	if err != nil {
		log.Fatal(err)
	}
	unassigned, err := db.Collection("leads").CountDocuments(ctx, bson.M{"$and": bson.A{filter, bson.M{"assigned_to": nil}}})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nTotal leads: %d, unassigned: %d\n", total, unassigned)
}
