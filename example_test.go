package abacus_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/submission"
)

// ExampleClient_Calculate evaluates expressions in process.
func ExampleClient_Calculate() {
	client, err := abacus.New()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	result, err := client.Calculate(ctx, "3 * -2 + 6")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(*result.Value)

	result, _ = client.Calculate(ctx, "1 / 0")
	fmt.Println(result.Note)

	_, err = client.Calculate(ctx, "2 ++ 3")
	fmt.Println(err)

	// Output:
	// 0
	// Division by zero
	// Consecutive operators are not allowed
}

// ExampleClient_NewController drives a submission controller and observes its transitions.
func ExampleClient_NewController() {
	client, err := abacus.New()
	if err != nil {
		log.Fatal(err)
	}

	ctrl := client.NewController(submission.WithObserver(func(ev domain.TransitionEvent) {
		switch {
		case ev.To.IsLoading:
			fmt.Println("loading")
		case ev.To.Result != nil:
			fmt.Println("result:", *ev.To.Result)
		case ev.To.ErrorMessage != "":
			fmt.Println("error:", ev.To.ErrorMessage)
		default:
			fmt.Println("idle")
		}
	}))

	ctrl.SetExpression("10 / 2 + 3 * 4 - 1")
	_ = ctrl.Calculate(context.Background())
	ctrl.Clear()

	// Output:
	// loading
	// result: 16
	// idle
}
