package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

const (
	entityTree = "BANK_TREE"
	entityNode = "BANK_NODE"

	// maxTransactItems is the DynamoDB limit per TransactWriteItems call
	maxTransactItems = 100
	// maxBatchItems is the DynamoDB limit per BatchWriteItem call
	maxBatchItems = 25
)

// API is the subset of the DynamoDB client the repository uses
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// RootRepository stores each top-level bank with its whole subtree as one item,
// plus one small index item per bank pointing at its top-level bank.
//
//	PK=TREE#<rootID>  SK=TREE   GSI1PK=OWNER#<owner> GSI1SK=TREE#<createdAt>#<rootID>
//	PK=NODE#<bankID>  SK=NODE   RootID
type RootRepository struct {
	client    API
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewRootRepository creates a new DynamoDB root repository
func NewRootRepository(client API, tableName, indexName string, logger *zap.Logger) *RootRepository {
	return &RootRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

var _ ports.RootRepository = (*RootRepository)(nil)

// treeItem represents the DynamoDB item structure for a top-level tree
type treeItem struct {
	PK         string            `dynamodbav:"PK"`
	SK         string            `dynamodbav:"SK"`
	GSI1PK     string            `dynamodbav:"GSI1PK"`
	GSI1SK     string            `dynamodbav:"GSI1SK"`
	EntityType string            `dynamodbav:"EntityType"`
	RootID     string            `dynamodbav:"RootID"`
	OwnerID    string            `dynamodbav:"OwnerID"`
	Tree       hierarchy.RawBank `dynamodbav:"Tree"`
	Version    int               `dynamodbav:"Version"`
	CreatedAt  string            `dynamodbav:"CreatedAt"`
	UpdatedAt  string            `dynamodbav:"UpdatedAt"`
}

// nodeItem maps one bank id to its top-level bank
type nodeItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	RootID     string `dynamodbav:"RootID"`
}

func treeKey(rootID valueobjects.BankID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "TREE#" + rootID.String()},
		"SK": &types.AttributeValueMemberS{Value: "TREE"},
	}
}

func nodeKey(id valueobjects.BankID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "NODE#" + id.String()},
		"SK": &types.AttributeValueMemberS{Value: "NODE"},
	}
}

func ownerKey(ownerID string) string {
	return "OWNER#" + ownerID
}

func toTreeItem(tree ports.RootTree) treeItem {
	created := tree.CreatedAt.UTC().Format(time.RFC3339Nano)
	return treeItem{
		PK:         "TREE#" + tree.Bank.ID.String(),
		SK:         "TREE",
		GSI1PK:     ownerKey(tree.OwnerID),
		GSI1SK:     fmt.Sprintf("TREE#%s#%s", created, tree.Bank.ID),
		EntityType: entityTree,
		RootID:     tree.Bank.ID.String(),
		OwnerID:    tree.OwnerID,
		Tree:       hierarchy.DenormalizeBank(tree.Bank, 0),
		Version:    tree.Version,
		CreatedAt:  created,
		UpdatedAt:  tree.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromTreeItem(item treeItem) (ports.RootTree, error) {
	bank, err := hierarchy.NormalizeBank(item.Tree)
	if err != nil {
		return ports.RootTree{}, err
	}
	created, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return ports.RootTree{
		OwnerID:   item.OwnerID,
		Bank:      bank,
		Version:   item.Version,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// ListRoots returns the trees of one owner through the owner index, or every
// tree with a scan when ownerID is empty. Trees come back oldest first.
func (r *RootRepository) ListRoots(ctx context.Context, ownerID string) ([]ports.RootTree, error) {
	var items []map[string]types.AttributeValue
	var err error
	if ownerID != "" {
		items, err = r.queryOwner(ctx, ownerID)
	} else {
		items, err = r.scanTrees(ctx)
	}
	if err != nil {
		return nil, err
	}

	trees := make([]ports.RootTree, 0, len(items))
	for _, av := range items {
		var item treeItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal tree", err)
		}
		tree, err := fromTreeItem(item)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}

	sort.SliceStable(trees, func(i, j int) bool {
		return trees[i].CreatedAt.Before(trees[j].CreatedAt)
	})
	return trees, nil
}

func (r *RootRepository) queryOwner(ctx context.Context, ownerID string) ([]map[string]types.AttributeValue, error) {
	keyExpr := expression.Key("GSI1PK").Equal(expression.Value(ownerKey(ownerID))).
		And(expression.Key("GSI1SK").BeginsWith("TREE#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyExpr).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build owner query", err)
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query trees by owner", err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *RootRepository) scanTrees(ctx context.Context) ([]map[string]types.AttributeValue, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityTree))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build tree scan", err)
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan trees", err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// LoadRoot returns a tree by its top-level id
func (r *RootRepository) LoadRoot(ctx context.Context, rootID valueobjects.BankID) (ports.RootTree, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            treeKey(rootID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return ports.RootTree{}, pkgerrors.NewDatabaseError("get tree", err)
	}
	if out.Item == nil {
		return ports.RootTree{}, pkgerrors.NewNotFoundError(fmt.Sprintf("top-level bank '%s'", rootID))
	}

	var item treeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return ports.RootTree{}, pkgerrors.NewDatabaseError("unmarshal tree", err)
	}
	return fromTreeItem(item)
}

// RootOf returns the top-level id of the tree containing id
func (r *RootRepository) RootOf(ctx context.Context, id valueobjects.BankID) (valueobjects.BankID, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            nodeKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", pkgerrors.NewDatabaseError("get node index", err)
	}
	if out.Item == nil {
		return "", pkgerrors.NewNotFoundError(fmt.Sprintf("bank '%s'", id))
	}

	var item nodeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", pkgerrors.NewDatabaseError("unmarshal node index", err)
	}
	return valueobjects.BankID(item.RootID), nil
}

// InsertRoot stores a new tree and indexes every bank in it
func (r *RootRepository) InsertRoot(ctx context.Context, tree ports.RootTree) error {
	put, err := r.treePut(tree, expression.Name("PK").AttributeNotExists())
	if err != nil {
		return err
	}

	writes := []types.TransactWriteItem{{Put: put}}
	index, err := r.indexPuts(tree.Bank.ID, hierarchy.IDs(tree.Bank))
	if err != nil {
		return err
	}
	if err := r.commit(ctx, "insert tree", append(writes, index...)); err != nil {
		return err
	}

	r.logger.Debug("Bank tree inserted",
		zap.String("rootID", tree.Bank.ID.String()),
		zap.String("ownerID", tree.OwnerID),
	)
	return nil
}

// SaveRoot replaces a tree whose stored version is tree.Version-1
func (r *RootRepository) SaveRoot(ctx context.Context, tree ports.RootTree, added, removed []valueobjects.BankID) error {
	put, err := r.treePut(tree, expression.Name("Version").Equal(expression.Value(tree.Version-1)))
	if err != nil {
		return err
	}

	writes := []types.TransactWriteItem{{Put: put}}
	index, err := r.indexPuts(tree.Bank.ID, added)
	if err != nil {
		return err
	}
	writes = append(writes, index...)
	for _, id := range removed {
		writes = append(writes, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key:       nodeKey(id),
		}})
	}
	if err := r.commit(ctx, "save tree", writes); err != nil {
		return err
	}

	r.logger.Debug("Bank tree saved",
		zap.String("rootID", tree.Bank.ID.String()),
		zap.Int("version", tree.Version),
		zap.Int("added", len(added)),
		zap.Int("removed", len(removed)),
	)
	return nil
}

// DeleteRoot removes a tree and every index entry below it
func (r *RootRepository) DeleteRoot(ctx context.Context, tree ports.RootTree) error {
	cond, err := expression.NewBuilder().
		WithCondition(expression.Name("Version").Equal(expression.Value(tree.Version))).
		Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build delete condition", err)
	}

	writes := []types.TransactWriteItem{{Delete: &types.Delete{
		TableName:                 aws.String(r.tableName),
		Key:                       treeKey(tree.Bank.ID),
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  cond.Names(),
		ExpressionAttributeValues: cond.Values(),
	}}}
	for _, id := range hierarchy.IDs(tree.Bank) {
		writes = append(writes, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key:       nodeKey(id),
		}})
	}
	return r.commit(ctx, "delete tree", writes)
}

func (r *RootRepository) treePut(tree ports.RootTree, condition expression.ConditionBuilder) (*types.Put, error) {
	av, err := attributevalue.MarshalMap(toTreeItem(tree))
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("marshal tree", err)
	}
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build tree condition", err)
	}
	return &types.Put{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

func (r *RootRepository) indexPuts(rootID valueobjects.BankID, ids []valueobjects.BankID) ([]types.TransactWriteItem, error) {
	writes := make([]types.TransactWriteItem, 0, len(ids))
	for _, id := range ids {
		av, err := attributevalue.MarshalMap(nodeItem{
			PK:         "NODE#" + id.String(),
			SK:         "NODE",
			EntityType: entityNode,
			RootID:     rootID.String(),
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("marshal node index", err)
		}
		writes = append(writes, types.TransactWriteItem{Put: &types.Put{
			TableName: aws.String(r.tableName),
			Item:      av,
		}})
	}
	return writes, nil
}

// commit writes the tree item and as many index writes as fit in one
// transaction; the first write must be the conditional tree write. Index
// writes beyond the transaction limit follow as batches once the tree write
// has succeeded.
func (r *RootRepository) commit(ctx context.Context, operation string, writes []types.TransactWriteItem) error {
	head, tail := writes, []types.TransactWriteItem(nil)
	if len(writes) > maxTransactItems {
		head, tail = writes[:maxTransactItems], writes[maxTransactItems:]
	}

	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: head})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			return pkgerrors.NewConflictError(fmt.Sprintf("%s: bank tree was modified concurrently", operation)).WithCause(err)
		}
		return pkgerrors.NewDatabaseError(operation, err)
	}

	for start := 0; start < len(tail); start += maxBatchItems {
		end := min(start+maxBatchItems, len(tail))
		requests := make([]types.WriteRequest, 0, end-start)
		for _, w := range tail[start:end] {
			switch {
			case w.Put != nil:
				requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: w.Put.Item}})
			case w.Delete != nil:
				requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: w.Delete.Key}})
			}
		}
		if err := r.batchWrite(ctx, requests); err != nil {
			r.logger.Error("Bank index batch failed after tree write",
				zap.String("operation", operation),
				zap.Error(err),
			)
			return pkgerrors.NewDatabaseError(operation, err)
		}
	}
	return nil
}

func (r *RootRepository) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.tableName: requests}
	for attempt := 0; len(pending[r.tableName]) > 0; attempt++ {
		if attempt >= 5 {
			return fmt.Errorf("%d index writes left unprocessed", len(pending[r.tableName]))
		}
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems
		if pending == nil {
			return nil
		}
	}
	return nil
}
