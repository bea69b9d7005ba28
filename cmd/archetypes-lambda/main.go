package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tyler180/nfl-archetypes/internal/app/archetypes"
)

func main() { lambda.Start(archetypes.LambdaEntrypoint) }
